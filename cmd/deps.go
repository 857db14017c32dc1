package cmd

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/recruiter/internal/ai"
	"github.com/spigell/recruiter/internal/ai/gemini"
	"github.com/spigell/recruiter/internal/ai/openai"
	"github.com/spigell/recruiter/internal/application"
	"github.com/spigell/recruiter/internal/config"
	"github.com/spigell/recruiter/internal/extract"
	"github.com/spigell/recruiter/internal/logger"
	"github.com/spigell/recruiter/internal/notify"
	"github.com/spigell/recruiter/internal/scheduling"
	"github.com/spigell/recruiter/internal/screening"
)

// buildDeps wires the collaborators of an application from a validated config.
// The result is safe to share between sessions.
func buildDeps(ctx context.Context, cfg *config.Config, log *zap.Logger) (application.Deps, error) {
	completer, err := newCompleter(ctx, cfg.AI, log)
	if err != nil {
		return application.Deps{}, fmt.Errorf("building ai completer: %w", err)
	}

	transport, err := newTransport(ctx, cfg.Email)
	if err != nil {
		return application.Deps{}, fmt.Errorf("building mail transport: %w", err)
	}

	aiLogger := logger.WithFields(log, logger.AIFields(cfg.AI.Provider, completer.Model())...)

	return application.Deps{
		Extractor: extract.New(log),
		Screener:  screening.New(completer, aiLogger, cfg.AI.MaxLogLength),
		Notifier:  notify.NewMailer(transport, cfg.Email.Sender, cfg.Company, log.With(zap.String("email_provider", cfg.Email.Provider))),
		Scheduler: scheduling.NewZoom(scheduling.Options{
			AccountID:    cfg.Zoom.AccountID,
			ClientID:     cfg.Zoom.ClientID,
			ClientSecret: cfg.Zoom.ClientSecret,
			APIURL:       cfg.Zoom.APIURL,
			TokenURL:     cfg.Zoom.TokenURL,
			Timeout:      cfg.Zoom.Timeout,
		}, log),
		Logger: log,
	}, nil
}

func newCompleter(ctx context.Context, cfg config.AIConfig, log *zap.Logger) (ai.Completer, error) {
	log = logger.WithFields(log, logger.AIFields(cfg.Provider, cfg.Model)...)

	opts := openai.Options{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Timeout: cfg.Timeout,
	}

	var (
		completer ai.Completer
		err       error
	)
	switch cfg.Provider {
	case config.ProviderFireworks:
		completer, err = openai.NewFireworks(opts, log)
	case config.ProviderOpenAI:
		completer, err = openai.New(opts, log)
	case config.ProviderGemini:
		completer, err = gemini.NewGenerator(ctx, cfg.APIKey, cfg.Model, cfg.Timeout, log)
	default:
		return nil, fmt.Errorf("unsupported ai provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	return completer, nil
}

func newTransport(ctx context.Context, cfg config.EmailConfig) (notify.Transport, error) {
	switch cfg.Provider {
	case config.EmailSMTP:
		return notify.NewSMTP(cfg.Host, cfg.Port, cfg.Sender, cfg.Password, cfg.Timeout), nil
	case config.EmailGmail:
		gmail, err := notify.NewGmail(ctx, cfg.CredentialsFile, cfg.TokenFile)
		if err != nil {
			return nil, err
		}
		return gmail, nil
	default:
		return nil, fmt.Errorf("unsupported email provider: %q", cfg.Provider)
	}
}

func newMachine(cfg *config.Config, deps application.Deps) (*application.Machine, error) {
	return application.New(application.Settings{
		Company: cfg.Company,
		Role:    cfg.RoleID(),
	}, deps)
}

// fatalConfig reports a config problem with the list of missing items when
// there is one.
func fatalConfig(log *zap.Logger, err error) {
	var incomplete *config.IncompleteError
	if errors.As(err, &incomplete) {
		log.Fatal("configuration incomplete",
			zap.Strings("missing", incomplete.Missing),
			zap.Strings("invalid", incomplete.Invalid),
			zap.String("hint", "set the items in recruiter.yaml or as RECRUITER_* environment variables"),
		)
	}
	log.Fatal("loading config", zap.Error(err))
}
