package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/eventry/eventry-client-go/api"
	"github.com/eventry/eventry-client-go/internal/config"
	"github.com/eventry/eventry-client-go/session"
	"github.com/eventry/eventry-client-go/session/store/sqlitekv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "sessionctl: %s\n", err)
		os.Exit(1)
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	kv, err := sqlitekv.New(filepath.Join(c.GetDataFolder(), "session.db"))
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer func() { _ = kv.Close() }()

	authAPI, err := api.NewClient(c.GetBaseURL(),
		api.WithTimeout(c.GetHTTPTimeout()),
		api.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("create API client: %w", err)
	}

	manager, err := session.NewManager(kv, authAPI, session.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("create session manager: %w", err)
	}

	ctx := context.Background()
	command := "status"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "status":
		if err := manager.Initialize(ctx); err != nil {
			return err
		}
		printStatus(manager)
		return nil

	case "login":
		if len(os.Args) < 3 {
			return errors.New("usage: sessionctl login <email>")
		}
		password, err := readPassword()
		if err != nil {
			return err
		}
		err = manager.LoginWithCredentials(ctx, os.Args[2], password)
		if errors.Is(err, session.ErrAccountNotConfirmed) {
			fmt.Println("Credentials correct, but the account is not confirmed yet.")
			fmt.Println("Run: sessionctl confirm <email> <code>")
			return nil
		}
		if err != nil {
			return err
		}
		printStatus(manager)
		return nil

	case "confirm":
		if len(os.Args) < 4 {
			return errors.New("usage: sessionctl confirm <email> <code>")
		}
		if err := manager.ConfirmAccount(ctx, os.Args[2], os.Args[3]); err != nil {
			return err
		}
		printStatus(manager)
		return nil

	case "logout":
		if err := manager.RestoreFromLocalStorage(ctx); err != nil && !errors.Is(err, session.ErrNoCachedSession) {
			return err
		}
		return manager.Logout(ctx)

	case "resync":
		if err := manager.RestoreFromLocalStorage(ctx); err != nil {
			return err
		}
		if err := manager.Refresh(ctx); err != nil {
			return err
		}
		printStatus(manager)
		return nil

	case "restore":
		if err := manager.RestoreFromLocalStorage(ctx); err != nil {
			return err
		}
		printStatus(manager)
		return nil

	default:
		return fmt.Errorf("unknown command %q (status|login|confirm|logout|resync|restore)", command)
	}
}

func printStatus(manager *session.Manager) {
	if !manager.IsAuthenticated() {
		fmt.Println("Not logged in.")
		return
	}

	user := manager.CurrentUser()
	fmt.Printf("Logged in as %s <%s>\n", user.DisplayName(), user.Email)
	fmt.Printf("  Trust:     %s\n", manager.Trust())
	fmt.Printf("  Confirmed: %t\n", manager.IsAccountConfirmed())
	if manager.ProfileIncomplete() {
		fmt.Println("  Profile:   incomplete (backend omitted some fields)")
	}
}

func readPassword() (string, error) {
	fmt.Print("Password: ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(raw), nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
