package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/dmitrijs2005/filevault/internal/common"
)

func (a *App) List(ctx context.Context) error {
	l, err := a.fileService.List(ctx, a.token())
	if err != nil {
		return a.checkAuth(err)
	}
	if l.Total == 0 {
		a.printf("No files\n")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tSIZE\tUPLOADED")
	for _, f := range l.Files {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", f.ID, f.OriginalName, f.MimeType, f.Size, f.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	a.printf("%d file(s)\n", l.Total)
	return nil
}

// Upload sends a local file through the server.
func (a *App) Upload(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: upload <path>", errUsage)
	}
	f, err := a.fileService.Upload(ctx, a.token(), args[0])
	if err != nil {
		return a.checkAuth(err)
	}
	a.printf("Uploaded %s as %s (%d bytes)\n", f.OriginalName, f.ID, f.Size)
	return nil
}

// Put uploads straight to object storage with a presigned url.
func (a *App) Put(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: put <path>", errUsage)
	}
	f, err := a.fileService.UploadPresigned(ctx, a.token(), args[0])
	if err != nil {
		return a.checkAuth(err)
	}
	a.printf("Uploaded %s as %s (%d bytes)\n", f.OriginalName, f.ID, f.Size)
	return nil
}

func (a *App) Download(ctx context.Context, args []string) error {
	viaServer := false
	var id string
	for _, arg := range args {
		switch {
		case arg == "--proxy":
			viaServer = true
		case id == "":
			id = arg
		default:
			return fmt.Errorf("%w: download <id> [--proxy]", errUsage)
		}
	}
	if id == "" {
		return fmt.Errorf("%w: download <id> [--proxy]", errUsage)
	}

	path, n, err := a.fileService.Download(ctx, a.token(), id, a.config.DownloadDir, viaServer)
	if err != nil {
		return a.checkAuth(err)
	}
	a.printf("Saved %s (%d bytes)\n", path, n)
	return nil
}

func (a *App) Link(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: link <id>", errUsage)
	}
	url, err := a.fileService.DownloadURL(ctx, a.token(), args[0])
	if err != nil {
		return a.checkAuth(err)
	}
	a.printf("%s\n(valid for 1 hour)\n", url)
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: delete <id>", errUsage)
	}
	if err := a.fileService.Delete(ctx, a.token(), args[0]); err != nil {
		return a.checkAuth(err)
	}
	a.printf("Deleted %s\n", args[0])
	return nil
}

// checkAuth drops the in-memory session once the server stops accepting
// the token.
func (a *App) checkAuth(err error) error {
	if errors.Is(err, common.ErrorUnauthorized) {
		a.session = nil
	}
	return err
}
