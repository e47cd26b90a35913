package components

import (
	"shopbook/internal/pkg/clock"
	"shopbook/internal/pkg/config"
	"shopbook/internal/usecase"
	"shopbook/internal/usecase/commands"
	"shopbook/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	func(cfg config.Config) config.BookingConfig { return cfg.Booking },
	fx.Annotate(
		usecase.NewAuthUseCase,
		fx.As(new(usecase.AuthUseCase)),
		fx.As(new(usecase.TokenValidator)),
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewAvailabilityQueries,
		queries.NewPromotionQueries,
		queries.NewAppointmentQueries,
	),
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewBookingCommands,
		commands.NewTransitionCommands,
	),
)
