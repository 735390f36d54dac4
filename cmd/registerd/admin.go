package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jrodas4044/signature-register/internal/domain/petition"
	"github.com/jrodas4044/signature-register/internal/infra/authz"
	"github.com/jrodas4044/signature-register/internal/infra/db"
	"github.com/jrodas4044/signature-register/internal/usecase"
)

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Run: func(_ *cobra.Command, _ []string) {
			_, logger, gdb, err := commonRun()
			if err != nil {
				fail(logger, "startup failed", err)
			}
			defer logger.Sync()
			if err := db.Migrate(gdb); err != nil {
				fail(logger, "migrate failed", err)
			}
			logger.Info("schema applied")
		},
	}
}

func importDictamenCommand() *cobra.Command {
	var subject string
	cmd := &cobra.Command{
		Use:   "import-dictamen <file>",
		Short: "Reconcile adhesion outcomes from a TSE dictamen file",
		Args:  cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			_, logger, gdb, err := commonRun()
			if err != nil {
				fail(logger, "startup failed", err)
			}
			defer logger.Sync()

			content, err := os.ReadFile(args[0])
			if err != nil {
				fail(logger, "read dictamen file", err)
			}

			reconciler := usecase.NewReconcilerService(
				db.NewSheetRepository(gdb),
				db.NewAdhesionRepository(gdb),
				authz.New(),
				logger,
			)
			principal := petition.Principal{Subject: subject, Role: petition.RoleAdmin}
			result := reconciler.ImportDictamen(context.Background(), principal, string(content))
			printJSON(result)
			if !result.Success {
				os.Exit(1)
			}
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "cli", "principal subject recorded for the import")
	return cmd
}

func seedCommand() *cobra.Command {
	var (
		name    string
		zone    string
		dpi     string
		from    int
		to      int
		subject string
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a leader and assign a block of sheets",
		Run: func(_ *cobra.Command, _ []string) {
			_, logger, gdb, err := commonRun()
			if err != nil {
				fail(logger, "startup failed", err)
			}
			defer logger.Sync()
			if err := db.Migrate(gdb); err != nil {
				fail(logger, "migrate failed", err)
			}

			leaderRepo := db.NewLeaderRepository(gdb)
			sheetRepo := db.NewSheetRepository(gdb)
			authorizer := authz.New()
			leaderSvc := usecase.NewLeaderService(leaderRepo, authorizer, logger)
			allocator := usecase.NewAllocatorService(sheetRepo, leaderRepo, authorizer, logger)

			principal := petition.Principal{Subject: subject, Role: petition.RoleAdmin}
			ctx := context.Background()

			created := leaderSvc.Create(ctx, principal, usecase.CreateLeaderInput{Name: name, Zone: zone, DPI: dpi})
			if !created.Success {
				fail(logger, "seed leader", fmt.Errorf("%s", created.Error))
			}

			listed := leaderSvc.ListAll(ctx, principal)
			if listed.Error != "" {
				fail(logger, "seed leader lookup", fmt.Errorf("%s", listed.Error))
			}
			var leaderID string
			for _, leader := range listed.Data {
				if leader.DPI == dpi {
					leaderID = leader.ID
					break
				}
			}
			if leaderID == "" {
				fail(logger, "seed leader lookup", fmt.Errorf("created leader not found"))
			}

			result := allocator.AssignBulk(ctx, principal, leaderID, from, to)
			printJSON(result)
			logger.Info("seed complete",
				zap.String("leader_id", leaderID),
				zap.Int("created", result.Created),
				zap.Int("skipped", result.Skipped),
			)
		},
	}
	cmd.Flags().StringVar(&name, "name", "Lider Demo", "leader name")
	cmd.Flags().StringVar(&zone, "zone", "Zona 1", "leader zone")
	cmd.Flags().StringVar(&dpi, "dpi", "1234567890101", "leader DPI")
	cmd.Flags().IntVar(&from, "from", 1, "first sheet number")
	cmd.Flags().IntVar(&to, "to", 10, "last sheet number")
	cmd.Flags().StringVar(&subject, "subject", "cli", "principal subject recorded for the seed")
	return cmd
}

func printJSON(v any) {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	fmt.Println(string(encoded))
}
