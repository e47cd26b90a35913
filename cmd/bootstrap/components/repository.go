package components

import (
	"shopbook/internal/infra/payment"
	"shopbook/internal/infra/readstore"
	"shopbook/internal/infra/repository"
	"shopbook/internal/pkg/config"
	"shopbook/internal/usecase"
	"shopbook/internal/usecase/commands"
	"shopbook/internal/usecase/queries"

	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	writeRepositoryModule,
	readstoreModule,
	paymentModule,
)

var writeRepositoryModule = fx.Module("repository/write",
	fx.Provide(
		fx.Annotate(
			repository.NewShopRepository,
			fx.As(new(commands.ShopRepository)),
		),
		fx.Annotate(
			repository.NewServiceRepository,
			fx.As(new(commands.ServiceRepository)),
		),
		fx.Annotate(
			repository.NewPromotionRepository,
			fx.As(new(commands.PromotionRepository)),
		),
		fx.Annotate(
			repository.NewAppointmentRepository,
			fx.As(new(commands.AppointmentRepository)),
		),
		fx.Annotate(
			repository.NewSlotClaimRepository,
			fx.As(new(commands.SlotGuard)),
		),
		fx.Annotate(
			repository.NewIdempotencyRepository,
			fx.As(new(commands.IdempotencyRepository)),
		),
		fx.Annotate(
			repository.NewNotificationRepository,
			fx.As(new(commands.NotificationRepository)),
		),
	),
)

var readstoreModule = fx.Module("repository/readstore",
	fx.Provide(
		fx.Annotate(
			readstore.NewShopReadStore,
			fx.As(new(queries.ShopReadStore)),
		),
		fx.Annotate(
			readstore.NewServiceReadStore,
			fx.As(new(queries.ServiceReadStore)),
		),
		fx.Annotate(
			readstore.NewSlotClaimReadStore,
			fx.As(new(queries.ClaimReadStore)),
		),
		fx.Annotate(
			readstore.NewPromotionReadStore,
			fx.As(new(queries.PromotionReadStore)),
		),
		fx.Annotate(
			readstore.NewAppointmentReadStore,
			fx.As(new(queries.AppointmentViewReadStore)),
		),
		fx.Annotate(
			readstore.NewUserReadStore,
			fx.As(new(usecase.UserReadStore)),
		),
	),
)

var paymentModule = fx.Module("repository/payment",
	fx.Provide(
		func(cfg config.Config) config.StripeConfig { return cfg.Stripe },
		payment.NewStripeGateway,
		payment.NewWalletGateway,
		fx.Annotate(
			payment.NewGateway,
			fx.As(new(commands.PaymentGateway)),
		),
	),
)
