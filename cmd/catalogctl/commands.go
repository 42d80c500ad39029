package main

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/brasil-hosp/go-backend/internal/usecase"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import products from a CSV or XLSX file",
	Long: `Parse a spreadsheet export and upsert every row into the catalog.

Columns are matched by header (Código, Nome, Categoria, Subgrupo, Descrição
and their synonyms). Rows without a name are skipped. The catalog cache is
invalidated and a catalog.imported event is recorded.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage catalog administrators",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an administrator account",
	RunE:  runAdminCreate,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE:  runMigrate,
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	svc, err := openServices(ctx)
	if err != nil {
		return err
	}
	defer svc.close()

	filename := filepath.Base(path)
	res, err := svc.admin.Import(ctx, &usecase.ImportReq{
		Filename:    filename,
		ContentType: mime.TypeByExtension(filepath.Ext(filename)),
		Data:        data,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "imported %d products, skipped %d rows\n", res.Imported, res.Skipped)
	return nil
}

func runAdminCreate(cmd *cobra.Command, _ []string) error {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	svc, err := openServices(ctx)
	if err != nil {
		return err
	}
	defer svc.close()

	admin, err := svc.auth.CreateAdmin(ctx, email, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "admin %d created: %s\n", admin.ID, admin.Email)
	return nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	svc, err := openServices(ctx)
	if err != nil {
		return err
	}
	defer svc.close()

	fmt.Fprintln(cmd.OutOrStdout(), "migrations are up to date")
	return nil
}
