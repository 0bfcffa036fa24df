package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/yukikurage/kanban-board-api/internal/config"
	"github.com/yukikurage/kanban-board-api/internal/database"
	"github.com/yukikurage/kanban-board-api/internal/export"
	"github.com/yukikurage/kanban-board-api/internal/models"
	"github.com/yukikurage/kanban-board-api/internal/repository"
	"github.com/yukikurage/kanban-board-api/internal/services"
	"github.com/yukikurage/kanban-board-api/internal/utils"
)

// app holds the services a command needs once the database is open.
type app struct {
	cfg     *config.Config
	auth    *services.AuthService
	tasks   *services.TaskService
	exports *services.ExportService
}

func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := database.Connect(cfg); err != nil {
		return nil, err
	}

	hasher, err := utils.NewPasswordHasher(cfg.PasswordHashScheme)
	if err != nil {
		return nil, err
	}

	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	auth := services.NewAuthService(userRepo, hasher, cfg.DefaultCollaboratorPassword)
	return &app{
		cfg:     cfg,
		auth:    auth,
		tasks:   services.NewTaskService(taskRepo, auth, nil),
		exports: services.NewExportService(repository.NewStore(db)),
	}, nil
}

// operator is the identity CLI maintenance runs as.
var operator = models.Actor{Username: "kanbanctl", Role: models.RoleAdmin}

var rootCmd = &cobra.Command{
	Use:          "kanbanctl",
	Short:        "Administrative tool for the Kanban board",
	Long:         `Runs migrations, manages users and maintains the board database. Configuration is read like the server's (environment and CONFIG_FILE).`,
	SilenceUsage: true,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := openApp(); err != nil {
			return err
		}
		return database.Migrate()
	},
}

var seedAdminCmd = &cobra.Command{
	Use:   "seed-admin",
	Short: "Create the bootstrap admin from BOOTSTRAP_ADMIN_USERNAME/PASSWORD",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		if a.cfg.BootstrapAdminUsername == "" {
			return errors.New("BOOTSTRAP_ADMIN_USERNAME is not set")
		}

		created, err := a.auth.EnsureBootstrapAdmin(cmd.Context(), a.cfg.BootstrapAdminUsername, a.cfg.BootstrapAdminPassword)
		if err != nil {
			return err
		}
		if created {
			fmt.Fprintf(cmd.OutOrStdout(), "created admin %q\n", a.cfg.BootstrapAdminUsername)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "user %q already exists\n", a.cfg.BootstrapAdminUsername)
		}
		return nil
	},
}

var createUserRole string

var createUserCmd = &cobra.Command{
	Use:   "create-user <username> <password>",
	Short: "Create a user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := models.ParseRole(createUserRole)
		if err != nil {
			return err
		}

		a, err := openApp()
		if err != nil {
			return err
		}

		user, err := a.auth.CreateUser(cmd.Context(), services.CreateUserInput{
			Username: args[0],
			Password: args[1],
			Role:     role,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", user.Username, user.Role)
		return nil
	},
}

var resetGenerate bool

var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password <username> [password]",
	Short: "Set a temporary password the user must change at next login",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var password string
		switch {
		case resetGenerate:
			generated, err := utils.GenerateTemporaryPassword()
			if err != nil {
				return err
			}
			password = generated
		case len(args) == 2:
			password = args[1]
		default:
			return errors.New("pass a password or --generate")
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		if err := a.auth.ResetPassword(cmd.Context(), args[0], password); err != nil {
			return err
		}

		if resetGenerate {
			fmt.Fprintf(cmd.OutOrStdout(), "temporary password for %s: %s\n", args[0], password)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "password for %s updated\n", args[0])
		}
		return nil
	},
}

var purgeConfirmed bool

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete every task, assignment and interaction (users are kept)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !purgeConfirmed {
			return errors.New("refusing to purge without --yes")
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		if err := a.tasks.Purge(cmd.Context(), operator); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "board purged")
		return nil
	},
}

var (
	exportOut    string
	exportFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Dump every relation to an XLSX workbook or a PDF report",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := export.ParseFormat(exportFormat)
		if err != nil {
			return err
		}
		if exportOut == "" {
			exportOut = "kanban-export." + string(format)
		}

		a, err := openApp()
		if err != nil {
			return err
		}

		f, err := os.Create(exportOut)
		if err != nil {
			return err
		}
		if err := a.exports.Write(cmd.Context(), format, f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", exportOut)
		return nil
	},
}

func init() {
	createUserCmd.Flags().StringVar(&createUserRole, "role", string(models.BaselineRole), "Admin, Supervisor, Coordinator or Collaborator")
	resetPasswordCmd.Flags().BoolVar(&resetGenerate, "generate", false, "generate a temporary password and print it")
	purgeCmd.Flags().BoolVar(&purgeConfirmed, "yes", false, "confirm deletion")
	exportCmd.Flags().StringVar(&exportFormat, "format", string(export.FormatXLSX), "xlsx or pdf")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file (default kanban-export.<format>)")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedAdminCmd)
	rootCmd.AddCommand(createUserCmd)
	rootCmd.AddCommand(resetPasswordCmd)
	rootCmd.AddCommand(purgeCmd)
	rootCmd.AddCommand(exportCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
