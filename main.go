package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	adminboot "github.com/spartan077/Taxi-Share/internal/admin/bootstrap"
	"github.com/spartan077/Taxi-Share/internal/platform"
	rideboot "github.com/spartan077/Taxi-Share/internal/ride/bootstrap"
	"github.com/spartan077/Taxi-Share/internal/shared/config"
	"github.com/spartan077/Taxi-Share/internal/shared/logger"
)

type runFunc func(ctx context.Context, cfg config.Config, p *platform.Platform, log *logger.Logger)

var services = map[string]runFunc{
	"group": rideboot.Run,
	"admin": adminboot.Run,
}

func main() {
	svc := flag.String("service", "group", "group|admin|all")
	flag.Parse()

	log := newLogger("bootstrap")
	defer log.Close()

	names := []string{*svc}
	if *svc == "all" {
		names = []string{"group", "admin"}
	}
	for _, name := range names {
		if _, ok := services[name]; !ok {
			log.Fatal(logger.Entry{Action: "invalid_service", Message: name})
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(logger.Entry{Action: "config_load_failed", Message: err.Error(), Error: &logger.ErrObj{Msg: err.Error()}})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	p, err := platform.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal(logger.Entry{Action: "platform_open_failed", Message: err.Error(), Error: &logger.ErrObj{Msg: err.Error()}})
	}
	defer p.Close()

	// при -service all оба сервиса делят одно хранилище
	var wg sync.WaitGroup
	for _, name := range names {
		wg.Add(1)
		go func(name string, run runFunc) {
			defer wg.Done()
			svcLog := newLogger(name + "-service")
			defer svcLog.Close()
			run(ctx, cfg, p, svcLog)
		}(name, services[name])
	}
	wg.Wait()
}

// newLogger: LOG_LEVEL и LOG_DIR (дублирование в файлы для dev)
func newLogger(service string) *logger.Logger {
	l, err := logger.NewLoggerWithOptions(service, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_DIR"))
	if err != nil {
		l = logger.NewLogger(service)
		l.Warn(logger.Entry{Action: "log_dir_unavailable", Message: err.Error()})
	}
	return l
}
