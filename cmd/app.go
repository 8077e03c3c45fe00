package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"rescueDispatch/internal/auth"
	"rescueDispatch/internal/components"
	"rescueDispatch/internal/config"
	"rescueDispatch/internal/domain"
)

func Run() error {
	bootCtx := context.Background()

	cfg, err := config.Load(bootCtx)
	if err != nil {
		components.SetupLogger("local").Error("load config failed", "err", err)
		return err
	}
	logger := components.SetupLogger(cfg.Env)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	comps, err := components.InitComponents(ctx, cfg, logger)
	if err != nil {
		logger.Error("could not init components", "err", err)
		return err
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := comps.HttpServer.Run(ctx); err != nil {
			logger.Error("http server failed", "err", err)
		}
		logger.Info("http server stopped")
	}()
	go func() {
		defer wg.Done()
		comps.Relay.Run(ctx)
		logger.Info("notification relay stopped")
	}()
	if comps.DispatchRetry != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			comps.DispatchRetry.Run(ctx)
			logger.Info("dispatch retry stopped")
		}()
	}

	quitChan := make(chan os.Signal, 1)
	signal.Notify(quitChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quitChan

	stop()
	logger.Info("captured signal, initiating shutdown", "signal", sig.String())

	wg.Wait()

	logger.Info("shutting down the services...")
	comps.ShutdownAll()
	logger.Info("gracefully shutting down the servers")

	return nil
}

// IssueToken prints a bearer token for local testing and operator bootstrap.
func IssueToken(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	id := fs.String("id", "", "user or driver id")
	name := fs.String("name", "", "display name")
	role := fs.String("role", string(domain.RoleOperator), "admin, operator, driver or reporter")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(context.Background())
	if err != nil {
		return err
	}

	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	tok, err := tokens.Issue(domain.Actor{ID: *id, Name: *name, Role: domain.Role(*role)})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, tok)
	return err
}
