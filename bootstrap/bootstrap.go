package bootstrap

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fulldump/box"

	"github.com/fulldump/labgrid/api"
	"github.com/fulldump/labgrid/configuration"
	"github.com/fulldump/labgrid/database"
	"github.com/fulldump/labgrid/logger"
	"github.com/fulldump/labgrid/service"
)

var VERSION = "dev"

const janitorInterval = time.Minute

func Bootstrap(c *configuration.Configuration) (start, stop func(), err error) {

	closeLog, err := logger.Setup(logger.Config{
		Level:      c.LogLevel,
		JSON:       c.LogJson,
		File:       c.LogFile,
		MaxSize:    c.LogMaxSize,
		MaxBackups: c.LogMaxBackups,
		MaxAge:     c.LogMaxAge,
	})
	if err != nil {
		return nil, nil, err
	}
	log := logger.Get()

	db := database.NewDatabase(&database.Config{
		Dir: c.Dir,
	})

	s, err := service.NewService(db, service.Options{
		Debounce: time.Duration(c.SearchDebounceMs) * time.Millisecond,
		PageSize: c.PageSize,
		ViewTTL:  time.Duration(c.ViewTTLMinutes) * time.Minute,
	})
	if err != nil {
		closeLog()
		return nil, nil, err
	}

	b := api.Build(s, VERSION, c.ApiKey, c.ApiSecret, c.EnableCompression)
	b.WithInterceptors(
		api.AccessLog(log.WithPrefix("access")),
		api.InterceptorUnavailable(db),
		api.RecoverFromPanic,
		api.PrettyErrorInterceptor,
	)

	server := &http.Server{
		Addr:    c.HttpAddr,
		Handler: box.Box2Http(b),
	}

	ln, err := net.Listen("tcp", c.HttpAddr)
	if err != nil {
		s.CloseAll()
		db.Stop()
		closeLog()
		return nil, nil, err
	}
	log.Info("listening", "addr", c.HttpAddr)

	janitorDone := make(chan struct{})
	stopOnce := &sync.Once{}
	stop = func() {
		stopOnce.Do(func() {
			close(janitorDone)
			if err := s.CloseAll(); err != nil {
				log.Error("close views", "err", err)
			}
			if err := db.Stop(); err != nil {
				log.Error("stop database", "err", err)
			}
			server.Shutdown(context.Background())
			closeLog()
		})
	}

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		for {
			sig := <-signalChan
			log.Info("signal received", "signal", sig.String())
			stop()
		}
	}()

	start = func() {

		wg := &sync.WaitGroup{}

		wg.Add(1)
		go func() {
			defer wg.Done()
			err := db.Start()
			if err != nil {
				log.Error("database", "err", err)
			}
		}()

		wg.Add(1)
		go func() {
			defer wg.Done()
			err := server.Serve(ln)
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("http server", "err", err)
			}
		}()

		if c.ViewTTLMinutes > 0 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				expireViews(s, janitorDone)
			}()
		}

		wg.Wait()
	}

	return start, stop, nil
}

// expireViews closes idle views until done is closed.
func expireViews(s service.Servicer, done <-chan struct{}) {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case now := <-ticker.C:
			if n := s.ExpireViews(now); n > 0 {
				logger.Get().Info("views expired", "count", n)
			}
		}
	}
}
