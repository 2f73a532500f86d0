package app

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/colibie/events-app-api/internal/access"
	"github.com/colibie/events-app-api/internal/api"
	"github.com/colibie/events-app-api/internal/config"
	"github.com/colibie/events-app-api/internal/messaging/notifier"
	"github.com/colibie/events-app-api/internal/repository"
	"github.com/colibie/events-app-api/internal/service"
)

// Run wires the process together and blocks until shutdown. The repository
// and notifier live on a delayed context so in-flight work drains before
// their connections close.
func Run(cfg config.Config, logger *zap.SugaredLogger) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	wg := &sync.WaitGroup{}

	delayedCtx, delayedCancel := context.WithCancel(context.Background())
	delayedWg := &sync.WaitGroup{}

	repo, err := repository.NewMongoRepository(delayedCtx, logger, delayedWg, cfg.MongoDB)
	if err != nil {
		logger.Fatalw("failed to create repository", "error", err)
	}

	notif := notifier.NewKafkaNotifier(delayedCtx, delayedWg, logger, cfg.Kafka)

	ctrl := access.NewControl(access.DefaultRules())
	userSvc := service.NewUserService(logger, repo, ctrl, notif)
	eventSvc := service.NewEventService(logger, repo, ctrl, notif)

	api.RunServer(ctx, logger, wg, cfg, userSvc, eventSvc)

	wg.Wait()
	logger.Info("shutting down")

	logger.Info("shutting down delayed services")
	delayedCancel()
	delayedWg.Wait()
}
