// Command gotasks-cli is a small terminal client for a goTasks backend:
// login, register, logout, whoami, and task CRUD against a base URL, with
// credentials persisted under the user config directory (or shared through
// Redis when -redis-addr is set).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	goTasks "github.com/MrEthical07/goTasks"
	"github.com/MrEthical07/goTasks/credstore"
	"github.com/redis/go-redis/v9"
)

func main() {
	var (
		baseURL   = flag.String("base-url", envOr("GOTASKS_BASE_URL", "http://localhost:8000/api"), "API base URL")
		redisAddr = flag.String("redis-addr", os.Getenv("REDIS_ADDR"), "redis address for a shared credential store; empty uses a local file store")
		timeout   = flag.Duration("timeout", 15*time.Second, "per-request timeout")
		verbose   = flag.Bool("v", false, "print audit events to stderr")
	)
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	client, err := buildClient(*baseURL, *redisAddr, *timeout, *verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "setup failed: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout+5*time.Second)
	defer cancel()

	if err := run(ctx, client, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func buildClient(baseURL, redisAddr string, timeout time.Duration, verbose bool) (*goTasks.Client, error) {
	b := goTasks.New().WithBaseURL(baseURL).WithTimeout(timeout)

	if redisAddr != "" {
		b.WithRedis(redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{redisAddr}}))
	} else {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, err
		}
		store, err := credstore.NewFile(filepath.Join(dir, "gotasks"))
		if err != nil {
			return nil, err
		}
		b.WithStore(store)
	}

	if verbose {
		b.WithAuditSink(goTasks.NewJSONWriterSink(os.Stderr))
	}

	return b.Build()
}

func run(ctx context.Context, client *goTasks.Client, args []string) error {
	switch args[0] {
	case "login":
		return cmdLogin(ctx, client, args[1:])
	case "register":
		return cmdRegister(ctx, client, args[1:])
	case "logout":
		// Restore first so the remote invalidation carries the stored token.
		if _, err := client.Restore(ctx); err != nil {
			return err
		}
		if _, err := client.AwaitReconcile(ctx); err != nil {
			return err
		}
		return client.Logout(ctx)
	case "whoami":
		return cmdWhoami(ctx, client)
	case "tasks":
		return cmdTasks(ctx, client, args[1:])
	default:
		usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func cmdLogin(ctx context.Context, client *goTasks.Client, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	_ = fs.Parse(args)

	if *email == "" || *password == "" {
		return errors.New("login requires -email and -password")
	}

	profile, err := client.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Printf("logged in as %s <%s>\n", profile.Name, profile.Email)
	return nil
}

func cmdRegister(ctx context.Context, client *goTasks.Client, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	confirm := fs.String("confirm", "", "password confirmation (defaults to -password)")
	_ = fs.Parse(args)

	if *name == "" || *email == "" || *password == "" {
		return errors.New("register requires -name, -email and -password")
	}
	if *confirm == "" {
		*confirm = *password
	}

	profile, err := client.Register(ctx, *name, *email, *password, *confirm)
	if err != nil {
		var ve *goTasks.ValidationError
		if errors.As(err, &ve) {
			for field, msg := range ve.Fields {
				fmt.Fprintf(os.Stderr, "  %s: %s\n", field, msg)
			}
		}
		return err
	}
	fmt.Printf("registered %s <%s>\n", profile.Name, profile.Email)
	return nil
}

func cmdWhoami(ctx context.Context, client *goTasks.Client) error {
	if _, err := client.Restore(ctx); err != nil {
		return err
	}
	status, err := client.AwaitReconcile(ctx)
	if err != nil {
		return err
	}
	if status != goTasks.StatusAuthenticated {
		fmt.Println("not logged in")
		return nil
	}
	u := client.CurrentUser()
	fmt.Printf("%s <%s> (id %d)\n", u.Name, u.Email, u.ID)
	return nil
}

func cmdTasks(ctx context.Context, client *goTasks.Client, args []string) error {
	if _, err := client.Restore(ctx); err != nil {
		return err
	}
	if _, err := client.AwaitReconcile(ctx); err != nil {
		return err
	}

	sub := "list"
	if len(args) > 0 {
		sub = args[0]
		args = args[1:]
	}

	switch sub {
	case "list":
		tasks, err := client.Tasks(ctx)
		if err != nil {
			return err
		}
		if len(tasks) == 0 {
			fmt.Println("no tasks")
			return nil
		}
		for _, t := range tasks {
			fmt.Printf("%4d  [%-11s]  %s\n", t.ID, t.Status.Label(), t.Title)
		}
		return nil

	case "add":
		fs := flag.NewFlagSet("tasks add", flag.ExitOnError)
		title := fs.String("title", "", "task title")
		desc := fs.String("desc", "", "task description")
		_ = fs.Parse(args)
		if *title == "" {
			return errors.New("tasks add requires -title")
		}
		t, err := client.CreateTask(ctx, goTasks.TaskInput{Title: *title, Description: *desc})
		if err != nil {
			return err
		}
		fmt.Printf("created task %d\n", t.ID)
		return nil

	case "status":
		fs := flag.NewFlagSet("tasks status", flag.ExitOnError)
		id := fs.Int64("id", 0, "task id")
		status := fs.String("to", "", "pending | in-progress | completed")
		_ = fs.Parse(args)
		if *id == 0 || *status == "" {
			return errors.New("tasks status requires -id and -to")
		}
		t, err := client.UpdateTaskStatus(ctx, *id, goTasks.TaskStatus(*status))
		if err != nil {
			return err
		}
		fmt.Printf("task %d is now %s\n", t.ID, t.Status.Label())
		return nil

	case "rm":
		fs := flag.NewFlagSet("tasks rm", flag.ExitOnError)
		id := fs.Int64("id", 0, "task id")
		_ = fs.Parse(args)
		if *id == 0 {
			return errors.New("tasks rm requires -id")
		}
		if err := client.DeleteTask(ctx, *id); err != nil {
			return err
		}
		fmt.Printf("deleted task %d\n", *id)
		return nil

	default:
		return fmt.Errorf("unknown tasks subcommand %q", sub)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: gotasks-cli [flags] <command>

commands:
  login    -email E -password P
  register -name N -email E -password P [-confirm P]
  logout
  whoami
  tasks    [list | add -title T [-desc D] | status -id N -to S | rm -id N]`)
}
