package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/recruiter/internal/application"
	"github.com/spigell/recruiter/internal/logger"
	"github.com/spigell/recruiter/internal/roles"
	"github.com/spigell/recruiter/internal/screening"
)

const (
	PromptSelectRole     = "Select role"
	PromptUploadResume   = "Upload resume"
	PromptScreen         = "Screen candidate"
	PromptProceed        = "Proceed with application"
	PromptShowRecord     = "Show application"
	PromptNewApplication = "New application"
	PromptExit           = "Exit"
)

var errExit = errors.New("exit requested")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an interactive recruitment session for one candidate",
	Run: func(_ *cobra.Command, _ []string) {
		run()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// run is the interactive session for the cli.
func run() {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	cfg, err := getConfig()
	if err != nil {
		fatalConfig(logger, err)
	}

	deps, err := buildDeps(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("building collaborators", zap.Error(err))
	}

	machine, err := newMachine(cfg, deps)
	if err != nil {
		logger.Fatal("creating an application", zap.Error(err))
	}

	logger.Info("starting the recruiter",
		zap.String("version", version),
		zap.String("company", cfg.Company),
		zap.String("role", cfg.Role),
	)

	for {
		rec := machine.Record()

		prompt := promptui.Select{
			Label: fmt.Sprintf("%s application (%s)", roles.Title(rec.Role), rec.State),
			Items: actionsFor(rec.State),
		}

		_, action, err := prompt.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(ctx, action, machine, logger); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Error("action failed", zap.String("action", action), zap.Error(err))
		}
	}
}

// actionsFor lists the prompt entries that make sense in state.
func actionsFor(state application.State) []string {
	var items []string

	switch state {
	case application.StateEmpty:
		items = []string{PromptSelectRole, PromptUploadResume}
	case application.StateResumeUploaded:
		items = []string{PromptUploadResume, PromptScreen}
	case application.StateScreening:
		items = []string{PromptScreen}
	case application.StateSelected, application.StateInterviewScheduled, application.StateInterviewSchedulingFailed:
		items = []string{PromptProceed}
	}

	items = append(items, PromptShowRecord)
	if state != application.StateEmpty {
		items = append(items, PromptNewApplication)
	}

	return append(items, PromptExit)
}

func handleAction(ctx context.Context, action string, machine *application.Machine, logger *zap.Logger) error {
	switch action {
	case PromptSelectRole:
		return selectRole(machine, logger)
	case PromptUploadResume:
		return uploadResume(ctx, machine, logger)
	case PromptScreen:
		return screen(ctx, machine, logger)
	case PromptProceed:
		return proceed(ctx, machine, logger)
	case PromptShowRecord:
		pretty, _ := json.MarshalIndent(machine.Record(), "", "  ")
		logger.Info(string(pretty))
		return nil
	case PromptNewApplication:
		machine.Reset()
		logger.Info("new application started", zap.String("application_id", machine.Record().ID.String()))
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "requested from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func selectRole(machine *application.Machine, logger *zap.Logger) error {
	all := roles.All()
	items := make([]string, 0, len(all))
	for _, r := range all {
		items = append(items, r.String())
	}

	prompt := promptui.Select{Label: "Role", Items: items}
	_, selected, err := prompt.Run()
	if err != nil {
		return err
	}

	if err := machine.SelectRole(roles.Role(selected)); err != nil {
		return err
	}

	requirements, err := roles.Requirements(roles.Role(selected))
	if err != nil {
		return err
	}
	logger.Info("role selected", zap.String("role", selected))
	fmt.Println(requirements)

	return nil
}

func uploadResume(ctx context.Context, machine *application.Machine, logger *zap.Logger) error {
	prompt := promptui.Prompt{
		Label: "Path to resume (PDF or text)",
		Validate: func(input string) error {
			info, err := os.Stat(strings.TrimSpace(input))
			if err != nil {
				return err
			}
			if info.IsDir() {
				return fmt.Errorf("%s is a directory", input)
			}
			return nil
		},
	}

	path, err := prompt.Run()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(strings.TrimSpace(path))
	if err != nil {
		return fmt.Errorf("read resume: %w", err)
	}

	if err := machine.SubmitResume(ctx, data); err != nil {
		return err
	}

	logger.Info("resume uploaded", zap.Int("characters", len([]rune(machine.Record().ResumeText))))
	return nil
}

func screen(ctx context.Context, machine *application.Machine, logger *zap.Logger) error {
	email := machine.Record().CandidateEmail
	if email == "" {
		prompt := promptui.Prompt{Label: "Candidate email"}
		input, err := prompt.Run()
		if err != nil {
			return err
		}
		email = input
	}

	decision, err := machine.RequestScreening(ctx, email)
	switch {
	case errors.Is(err, screening.ErrFormat), errors.Is(err, screening.ErrTransport):
		logger.Warn("candidate is not selected: no usable screening answer",
			zap.String("hint", "screen again or start a new application"),
			zap.Error(err),
		)
		return nil
	case err != nil:
		return err
	}

	rec := machine.Record()
	if decision.Selected {
		logger.Info("candidate selected",
			zap.String("feedback", decision.Feedback),
			zap.Strings("matching_skills", decision.MatchingSkills),
		)
		return nil
	}

	fields := []zap.Field{
		zap.String("feedback", decision.Feedback),
		zap.Strings("missing_skills", decision.MissingSkills),
	}
	if rec.Rejection != nil {
		fields = append(fields, zap.Bool("rejection_mail_sent", rec.Rejection.OK()))
	}
	logger.Info("candidate rejected", fields...)

	return nil
}

func proceed(ctx context.Context, machine *application.Machine, logger *zap.Logger) error {
	outcome, err := machine.Proceed(ctx)
	if err != nil {
		return err
	}

	fields := []zap.Field{
		zap.String("state", outcome.State.String()),
		zap.Time("interview_time", outcome.InterviewTime),
		zap.String("meeting_link", outcome.MeetingLink),
		zap.Bool("confirmation_sent", outcome.Confirmation.OK()),
		zap.Bool("interview_sent", outcome.Interview.OK()),
	}
	if outcome.SchedulingErr != nil {
		fields = append(fields, zap.NamedError("scheduling_error", outcome.SchedulingErr))
	}

	if outcome.PartialFailure() {
		logger.Warn("processed, but some mails were not delivered; check the email settings", fields...)
		return nil
	}

	logger.Info("confirmation and interview details sent", fields...)
	return nil
}
