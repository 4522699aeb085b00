package cli

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"storyboard-server/internal/remote"
)

func newImagesCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "images",
		Short: "Manage the drawings stored on the server",
	}
	cmd.AddCommand(newImagesListCommand(app))
	cmd.AddCommand(newImagesUploadCommand(app))
	cmd.AddCommand(newImagesUpdateCommand(app))
	cmd.AddCommand(newImagesDeleteCommand(app))
	return cmd
}

func newImagesListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List drawings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := app.authorised()
			if err != nil {
				return err
			}
			images, err := backend.ListImages(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TITLE\tTIME\tURI")
			for _, img := range images {
				fmt.Fprintf(w, "%s\t%s\t%s\n", img.Title, img.Time, img.URI)
			}
			return w.Flush()
		},
	}
}

func newImagesUploadCommand(app *App) *cobra.Command {
	var title, description string
	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a drawing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := app.authorised()
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			name := filepath.Base(args[0])
			if title == "" {
				title = name
			}
			contentType := mime.TypeByExtension(filepath.Ext(name))
			if contentType == "" {
				contentType = "application/octet-stream"
			}
			img, err := backend.UploadImage(cmd.Context(), remote.ImageUpload{
				Filename:    name,
				ContentType: contentType,
				Content:     f,
				Title:       title,
				Description: description,
				Time:        time.Now().Format(time.RFC3339),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s\n", img.URI)
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "drawing title (defaults to the file name)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "drawing description")
	return cmd
}

func newImagesUpdateCommand(app *App) *cobra.Command {
	var title, description string
	cmd := &cobra.Command{
		Use:   "update <uri>",
		Short: "Change the title or description of a drawing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := app.authorised()
			if err != nil {
				return err
			}
			img, err := backend.UpdateImage(cmd.Context(), remote.ImageData{
				ID:          args[0],
				URI:         args[0],
				Title:       title,
				Description: description,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", img.URI)
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	return cmd
}

func newImagesDeleteCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <uri>",
		Short: "Delete a drawing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := app.authorised()
			if err != nil {
				return err
			}
			if err := backend.DeleteImage(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}
