package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spigell/resume-matcher/internal/client"
	"github.com/spigell/resume-matcher/internal/extract"
	"github.com/spigell/resume-matcher/internal/jobs"
	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/session"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptShowSuggestions = "Show job suggestions"
	PromptHideSuggestions = "Hide job suggestions"
	PromptUploadAnother   = "Upload another resume"
	PromptListJobs        = "List all job titles"
	PromptExit            = "Exit"
)

var errExit = errors.New("exit requested")

var matchCmd = &cobra.Command{
	Use:   "match [resume file]",
	Short: "Upload a resume to the service and browse matching job titles",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runMatch(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringP("server", "s", client.DefaultBaseURL, "base url of the resume-matcher service")
	matchCmd.Flags().Duration("timeout", time.Minute, "timeout for a single request to the service")
	matchCmd.Flags().Bool("server-extract", false, "let the service read the resume file instead of reading it locally")
	matchCmd.Flags().BoolP("yes", "y", false, "print the first suggestions and exit without prompting")

	viper.BindPFlag("match.server", matchCmd.Flags().Lookup("server"))
	viper.BindPFlag("match.timeout", matchCmd.Flags().Lookup("timeout"))
	viper.BindPFlag("match.server-extract", matchCmd.Flags().Lookup("server-extract"))
	viper.BindEnv("match.server", "RESUME_MATCHER_SERVER")
}

// backend runs session effects against the service.
type backend struct {
	api           *client.Client
	extractor     *extract.Extractor
	serverExtract bool
}

func (b *backend) Extract(ctx context.Context, file session.File) (*extract.Document, error) {
	if !b.serverExtract {
		return b.extractor.FromFile(file.Path)
	}

	info, err := os.Stat(file.Path)
	if err != nil {
		return nil, err
	}
	if info.Size() > b.extractor.MaxSize() {
		return nil, fmt.Errorf("%w: %d bytes, limit is %d", extract.ErrTooLarge, info.Size(), b.extractor.MaxSize())
	}

	data, err := os.ReadFile(file.Path)
	if err != nil {
		return nil, err
	}

	return b.api.Extract(ctx, file.Name, data)
}

func (b *backend) Match(ctx context.Context, resumeText string) ([]jobs.Title, error) {
	return b.api.Match(ctx, resumeText)
}

func runMatch(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	log := newLogger(logger.WithOutput("stderr"))

	maxSize := viper.GetInt64("extract.max-size")
	api := client.New(viper.GetString("match.server"), viper.GetDuration("match.timeout"), logger.Named(log, "client"))

	sess := session.New(&backend{
		api:           api,
		extractor:     extract.New(maxSize),
		serverExtract: viper.GetBool("match.server-extract"),
	}, logger.Named(log, "session"))

	path := ""
	if len(args) > 0 {
		path = args[0]
	}

	if path == "" {
		var err error
		path, err = askPath()
		if err != nil {
			log.Fatal("exiting", zap.Error(err))
		}
	}

	upload(ctx, sess, path, log)

	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		if sess.State().Loading || !sess.State().SuggestionsVisible {
			os.Exit(1)
		}
		return
	}

	for {
		action, err := askAction(sess.State())
		if err != nil {
			log.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(ctx, action, sess, api, log); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			log.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(ctx context.Context, action string, sess *session.Session, api *client.Client, log *zap.Logger) error {
	switch action {
	case PromptShowSuggestions, PromptHideSuggestions:
		report(sess, sess.Dispatch(ctx, session.ToggleRequested{}), log)
		return nil
	case PromptUploadAnother:
		path, err := askPath()
		if err != nil {
			return err
		}
		upload(ctx, sess, path, log)
		return nil
	case PromptListJobs:
		titles, err := api.ListJobs(ctx)
		if err != nil {
			log.Error("could not load job titles", zap.Error(err))
			return nil
		}
		log.Info("available job titles", zap.Int("count", len(titles)))
		printTitles(titles)
		return nil
	case PromptExit:
		log.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func upload(ctx context.Context, sess *session.Session, path string, log *zap.Logger) {
	file := session.File{Path: path, Name: filepath.Base(path)}
	if info, err := os.Stat(path); err == nil {
		file.Size = info.Size()
	}

	notices := sess.Dispatch(ctx, session.FileSelected{File: file})

	state := sess.State()
	if state.File != nil {
		doc := &extract.Document{Name: state.File.Name, Type: state.File.Type, Size: state.File.Size}
		log.Info("uploaded resume",
			zap.String("name", doc.Name),
			zap.String("type", doc.DisplayType()),
			zap.String("size", doc.SizeKB()),
		)
	}

	report(sess, notices, log)
}

// report logs the notices and prints the suggestions when they are visible.
func report(sess *session.Session, notices []session.Notice, log *zap.Logger) {
	for _, n := range notices {
		fields := []zap.Field{zap.String("title", n.Title)}
		if n.Level == session.LevelError {
			log.Error(n.Message, fields...)
			continue
		}
		log.Info(n.Message, append(fields, zap.String("level", string(n.Level)))...)
	}

	state := sess.State()
	if !state.SuggestionsVisible || state.Loading {
		return
	}

	if len(state.Jobs) == 0 {
		fmt.Println("No matching job titles found for this resume.")
		return
	}

	fmt.Println("Suggested job titles:")
	printTitles(state.Jobs)
}

func printTitles(titles []jobs.Title) {
	for _, t := range titles {
		fmt.Printf("  %s\n", t)
	}
}

func askPath() (string, error) {
	prompt := promptui.Prompt{
		Label: "Path to resume file (.txt, .pdf, .docx)",
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("path is required")
			}
			return nil
		},
	}

	path, err := prompt.Run()
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(path), nil
}

func askAction(state session.State) (string, error) {
	items := make([]string, 0, 4)

	if state.CanToggle() {
		if state.SuggestionsVisible {
			items = append(items, PromptHideSuggestions)
		} else {
			items = append(items, PromptShowSuggestions)
		}
	}

	items = append(items, PromptUploadAnother, PromptListJobs, PromptExit)

	prompt := promptui.Select{
		Label: "What next?",
		Items: items,
	}

	_, action, err := prompt.Run()
	return action, err
}
