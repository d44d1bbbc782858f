package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/ragchat"
	bt "github.com/fwojciec/ragchat/bubbletea"
	"github.com/fwojciec/ragchat/chatapi"
	"github.com/fwojciec/ragchat/config"
	ragjson "github.com/fwojciec/ragchat/json"
	"github.com/fwojciec/ragchat/logger"
	"github.com/spf13/cobra"
)

const flagSession = "session"

func newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open the chat UI",
		Long: `Open the chat UI.

Without --session the conversation is not kept after exit. With --session
it is loaded from that file (if present) and written back on exit. A bare
name such as "work" refers to <session_dir>/work.json.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, _ := cmd.Flags().GetString(flagSession)
			return runChat(cmd, name)
		},
	}
	cmd.Flags().String(flagSession, "", "session file or name to resume and save")
	return cmd
}

func runChat(cmd *cobra.Command, sessionName string) error {
	cfg, err := config.FromCommand(cmd)
	if err != nil {
		return err
	}
	sessionPath := sessionFile(sessionName, cfg.SessionDir)

	// The UI owns the terminal, so logs go to a file.
	logFile, err := logger.OpenFile(cfg.Log.File)
	if err != nil {
		return err
	}
	defer logFile.Close()
	log := newLogger(cfg.Log, logFile)

	session, err := loadOrCreateSession(sessionPath, time.Now())
	if err != nil {
		return err
	}
	store := ragjson.NewStore(cfg.StatePath)
	client := chatapi.New(chatapi.WithEndpoint(cfg.Endpoint), chatapi.WithLogger(log))
	log.Info("chat started", "session", session.ID, "endpoint", client.Endpoint(), "messages", len(session.Transcript.Messages))
	exchange := ragchat.NewExchange(client)

	agentFn := func(ctx context.Context, s *ragchat.Session, req ragchat.Request, onEvent func(ragchat.Event)) error {
		err := exchange.Run(ctx, s, req, ragchat.WithEventHandler(onEvent))
		if err != nil {
			log.Error("exchange failed", "error", err)
		}
		return err
	}

	m := bt.New(agentFn, &session, ragchat.DefaultTheme(), bt.WithStore(store))
	final, err := bt.Run(cmd.Context(), m)
	if err != nil {
		return fmt.Errorf("TUI: %w", err)
	}

	// The agent goroutine may still own session.Transcript if the program
	// was stopped mid-exchange; save the model's copy instead.
	saved := ragchat.Session{
		ID:         session.ID,
		CreatedAt:  session.CreatedAt,
		UpdatedAt:  time.Now(),
		Transcript: final.Transcript(),
	}
	if err := saveSession(sessionPath, saved); err != nil {
		return err
	}
	log.Info("chat finished", "session", saved.ID, "saved", sessionPath)
	return nil
}

// sessionFile resolves the --session value. Values that look like a path
// are used as given; a bare name lives in dir.
func sessionFile(name, dir string) string {
	if name == "" || dir == "" || strings.ContainsRune(name, filepath.Separator) || filepath.Ext(name) != "" {
		return name
	}
	return filepath.Join(dir, name+".json")
}

// loadOrCreateSession loads the session at path. An empty path, or a path
// with no file yet, starts a new session.
func loadOrCreateSession(path string, now time.Time) (ragchat.Session, error) {
	if path == "" {
		return ragchat.NewSession(now), nil
	}
	s, err := ragjson.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return ragchat.NewSession(now), nil
	}
	if err != nil {
		return ragchat.Session{}, fmt.Errorf("load session: %w", err)
	}
	return s, nil
}

// saveSession writes s to path. Nothing is saved when path is empty.
func saveSession(path string, s ragchat.Session) error {
	if path == "" {
		return nil
	}
	if err := ragjson.Save(path, s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// printTokens returns an event handler that writes each token to w.
func printTokens(w io.Writer) func(ragchat.Event) {
	return func(e ragchat.Event) {
		if tok, ok := e.(ragchat.EventToken); ok {
			fmt.Fprint(w, tok.Token)
		}
	}
}
