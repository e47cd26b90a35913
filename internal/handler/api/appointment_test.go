//go:build unit

package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"shopbook/internal/domain/appointment"
	"shopbook/internal/domain/user"
	"shopbook/internal/handler/api"
	resdto "shopbook/internal/handler/dto/response"
	"shopbook/internal/pkg/validation"
	"shopbook/internal/usecase/commands"
	"shopbook/internal/usecase/mocks"
	"shopbook/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type AppointmentHandlerTestSuite struct {
	suite.Suite
	router          *gin.Engine
	mockCtrl        *gomock.Controller
	mockBooking     *mocks.MockBookingCommands
	mockTransitions *mocks.MockTransitionCommands
	mockAvail       *mocks.MockAvailabilityQueries
	mockQueries     *mocks.MockAppointmentQueries
	userID          uuid.UUID
}

func (s *AppointmentHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.Require().NoError(validation.RegisterCustomValidators())
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockBooking = mocks.NewMockBookingCommands(s.mockCtrl)
	s.mockTransitions = mocks.NewMockTransitionCommands(s.mockCtrl)
	s.mockAvail = mocks.NewMockAvailabilityQueries(s.mockCtrl)
	s.mockQueries = mocks.NewMockAppointmentQueries(s.mockCtrl)
	s.userID = uuid.New()

	handler := api.NewAppointmentHandler(s.mockBooking, s.mockTransitions, s.mockAvail, s.mockQueries)

	authed := func(c *gin.Context) {
		c.Set("user_id", s.userID)
		c.Set("user_role", user.RoleCustomer)
	}

	s.router.GET("/appointments/time-slots", handler.GetTimeSlots)
	s.router.POST("/appointments", authed, handler.CreateAppointment)
	s.router.GET("/appointments", authed, handler.ListMyAppointments)
	s.router.GET("/appointments/:id", authed, handler.GetAppointment)
	s.router.PUT("/appointments/:id/status", authed, handler.ChangeStatus)
}

func (s *AppointmentHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestAppointmentHandlerSuite(t *testing.T) {
	suite.Run(t, new(AppointmentHandlerTestSuite))
}

func (s *AppointmentHandlerTestSuite) perform(method, url string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *AppointmentHandlerTestSuite) TestGetTimeSlots() {
	shopID := uuid.New()
	serviceID := uuid.New()
	url := "/appointments/time-slots?shopId=" + shopID.String() + "&serviceId=" + serviceID.String() + "&date=2026-03-10"

	s.Run("success: returns the slot list", func() {
		s.mockAvail.EXPECT().AvailableSlots(gomock.Any(), shopID, serviceID, "2026-03-10").
			Return([]queries.SlotView{{StartTime: "09:00", EndTime: "10:00"}}, nil)

		rec := s.perform(http.MethodGet, url, nil, nil)

		s.Equal(http.StatusOK, rec.Code)
		var resp resdto.TimeSlotsResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Len(resp.Slots, 1)
		s.Equal("09:00", resp.Slots[0].StartTime)
	})

	s.Run("error: 400 on malformed day", func() {
		rec := s.perform(http.MethodGet, "/appointments/time-slots?shopId="+shopID.String()+"&serviceId="+serviceID.String()+"&date=10-03-2026", nil, nil)

		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("error: 404 when the shop does not exist", func() {
		s.mockAvail.EXPECT().AvailableSlots(gomock.Any(), shopID, serviceID, "2026-03-10").
			Return(nil, queries.ErrShopNotFound)

		rec := s.perform(http.MethodGet, url, nil, nil)

		s.Equal(http.StatusNotFound, rec.Code)
	})

	s.Run("error: 404 when the service does not exist", func() {
		s.mockAvail.EXPECT().AvailableSlots(gomock.Any(), shopID, serviceID, "2026-03-10").
			Return(nil, queries.ErrServiceNotFound)

		rec := s.perform(http.MethodGet, url, nil, nil)

		s.Equal(http.StatusNotFound, rec.Code)
	})
}

func (s *AppointmentHandlerTestSuite) TestCreateAppointment() {
	url := "/appointments"
	body := map[string]any{
		"shopId":        uuid.New().String(),
		"serviceId":     uuid.New().String(),
		"date":          "2026-03-10",
		"startTime":     "10:00",
		"paymentMethod": "offline",
	}
	idemHeader := map[string]string{"Idempotency-Key": uuid.New().String()}

	s.Run("success: 201 for a new booking", func() {
		view := &queries.AppointmentView{ID: uuid.New(), Status: "pending"}
		s.mockBooking.EXPECT().CreateAppointment(gomock.Any(), gomock.Any(), s.userID, gomock.Any()).
			Return(&commands.CreateAppointmentResult{Appointment: view}, nil)

		rec := s.perform(http.MethodPost, url, body, idemHeader)

		s.Equal(http.StatusCreated, rec.Code)
		var resp resdto.AppointmentResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Equal(view.ID, resp.ID)
	})

	s.Run("success: 200 for an idempotent replay", func() {
		view := &queries.AppointmentView{ID: uuid.New(), Status: "pending"}
		s.mockBooking.EXPECT().CreateAppointment(gomock.Any(), gomock.Any(), s.userID, gomock.Any()).
			Return(&commands.CreateAppointmentResult{Appointment: view, IsReplayed: true}, nil)

		rec := s.perform(http.MethodPost, url, body, idemHeader)

		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("error: 400 without an Idempotency-Key header", func() {
		rec := s.perform(http.MethodPost, url, body, nil)

		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("error: 400 with a non-UUID Idempotency-Key", func() {
		rec := s.perform(http.MethodPost, url, body, map[string]string{"Idempotency-Key": "not-a-uuid"})

		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("error: 400 on binding failures", func() {
		cases := []struct {
			name   string
			mutate func(m map[string]any)
		}{
			{name: "missing date", mutate: func(m map[string]any) { delete(m, "date") }},
			{name: "malformed date", mutate: func(m map[string]any) { m["date"] = "March 10" }},
			{name: "malformed start time", mutate: func(m map[string]any) { m["startTime"] = "25:99" }},
			{name: "unknown payment method", mutate: func(m map[string]any) { m["paymentMethod"] = "cheque" }},
		}

		for _, tc := range cases {
			s.Run(tc.name, func() {
				mutated := map[string]any{}
				for k, v := range body {
					mutated[k] = v
				}
				tc.mutate(mutated)

				rec := s.perform(http.MethodPost, url, mutated, idemHeader)

				s.Equal(http.StatusBadRequest, rec.Code)
			})
		}
	})

	s.Run("error: command errors map to status codes", func() {
		cases := []struct {
			name       string
			err        error
			expectCode int
		}{
			{name: "shop missing", err: commands.ErrShopNotFound, expectCode: http.StatusNotFound},
			{name: "service missing", err: commands.ErrServiceNotFound, expectCode: http.StatusNotFound},
			{name: "slot taken", err: commands.ErrSlotTaken, expectCode: http.StatusConflict},
			{name: "slot no longer valid", err: commands.ErrSlotNoLongerValid, expectCode: http.StatusBadRequest},
			{name: "coupon missing", err: commands.ErrPromotionNotFound, expectCode: http.StatusBadRequest},
			{name: "coupon rejected", err: commands.ErrPromotionRejected, expectCode: http.StatusBadRequest},
			{name: "duplicate request", err: commands.ErrDuplicateRequest, expectCode: http.StatusConflict},
			{name: "still processing", err: commands.ErrIdempotencyInProgress, expectCode: http.StatusConflict},
			{name: "payment failed", err: commands.ErrPaymentFailed, expectCode: http.StatusPaymentRequired},
			{name: "domain validation", err: commands.ErrDomainValidation, expectCode: http.StatusUnprocessableEntity},
		}

		for _, tc := range cases {
			s.Run(tc.name, func() {
				s.mockBooking.EXPECT().CreateAppointment(gomock.Any(), gomock.Any(), s.userID, gomock.Any()).
					Return(nil, tc.err)

				rec := s.perform(http.MethodPost, url, body, idemHeader)

				s.Equal(tc.expectCode, rec.Code)
			})
		}
	})
}

func (s *AppointmentHandlerTestSuite) TestChangeStatus() {
	apptID := uuid.New()
	url := "/appointments/" + apptID.String() + "/status"
	body := map[string]any{"status": "cancelled"}

	s.Run("success: returns the updated appointment", func() {
		view := &queries.AppointmentView{ID: apptID, Status: "cancelled"}
		s.mockTransitions.EXPECT().ChangeStatus(gomock.Any(), apptID, "cancelled", s.userID, "customer").
			Return(view, nil)

		rec := s.perform(http.MethodPut, url, body, nil)

		s.Equal(http.StatusOK, rec.Code)
		var resp resdto.AppointmentResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Equal("cancelled", resp.Status)
	})

	s.Run("error: 400 on a malformed appointment ID", func() {
		rec := s.perform(http.MethodPut, "/appointments/not-a-uuid/status", body, nil)

		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("error: transition errors map to status codes", func() {
		cases := []struct {
			name       string
			err        error
			expectCode int
		}{
			{name: "appointment missing", err: commands.ErrAppointmentNotFound, expectCode: http.StatusNotFound},
			{name: "invalid status value", err: commands.ErrInvalidStatus, expectCode: http.StatusBadRequest},
			{name: "unrelated requester", err: commands.ErrUnauthorizedActor, expectCode: http.StatusForbidden},
			{name: "wrong actor for the move", err: appointment.ErrActorNotAllowed, expectCode: http.StatusForbidden},
			{name: "illegal transition", err: appointment.ErrInvalidTransition, expectCode: http.StatusUnprocessableEntity},
		}

		for _, tc := range cases {
			s.Run(tc.name, func() {
				s.mockTransitions.EXPECT().ChangeStatus(gomock.Any(), apptID, "cancelled", s.userID, "customer").
					Return(nil, tc.err)

				rec := s.perform(http.MethodPut, url, body, nil)

				s.Equal(tc.expectCode, rec.Code)
			})
		}
	})
}

func (s *AppointmentHandlerTestSuite) TestGetAppointment() {
	apptID := uuid.New()
	url := "/appointments/" + apptID.String()

	s.Run("success", func() {
		view := &queries.AppointmentView{ID: apptID}
		s.mockQueries.EXPECT().GetByID(gomock.Any(), apptID, s.userID, "customer").
			Return(view, nil)

		rec := s.perform(http.MethodGet, url, nil, nil)

		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("error: 404 on unknown appointment", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), apptID, s.userID, "customer").
			Return(nil, queries.ErrAppointmentNotFound)

		rec := s.perform(http.MethodGet, url, nil, nil)

		s.Equal(http.StatusNotFound, rec.Code)
	})

	s.Run("error: 403 for another customer's appointment", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), apptID, s.userID, "customer").
			Return(nil, queries.ErrAccessDenied)

		rec := s.perform(http.MethodGet, url, nil, nil)

		s.Equal(http.StatusForbidden, rec.Code)
	})
}

func (s *AppointmentHandlerTestSuite) TestListMyAppointments() {
	s.Run("success: returns the caller's list", func() {
		items := []*queries.AppointmentListItem{
			{ID: uuid.New(), ShopName: "Corner Barber", Status: "confirmed"},
			{ID: uuid.New(), ShopName: "Corner Barber", Status: "completed"},
		}
		s.mockQueries.EXPECT().ListByCustomer(gomock.Any(), s.userID).Return(items, nil)

		rec := s.perform(http.MethodGet, "/appointments", nil, nil)

		s.Equal(http.StatusOK, rec.Code)
		var resp []resdto.AppointmentListResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Len(resp, 2)
	})
}
