package loader

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/housing-cli/internal/fetcher"
)

// Options configures a Loader.
type Options struct {
	// TempDir is the parent for download and extraction scratch directories
	// ("" uses the OS default).
	TempDir string
	// Timeout bounds each remote download. Defaults to 30s.
	Timeout time.Duration
	// CSV configures parsing of delimited inputs.
	CSV fetcher.CSVOptions
	// HTTP and FTP override the remote fetchers (tests).
	HTTP fetcher.Fetcher
	FTP  fetcher.Fetcher
}

// Loader reads census and coordinate tables from local paths, http(s) or ftp
// URLs. .zip archives holding a single file and .xlsx workbooks are unpacked
// transparently.
type Loader struct {
	tempDir string
	csv     fetcher.CSVOptions
	http    fetcher.Fetcher
	ftp     fetcher.Fetcher
}

// New creates a Loader.
func New(opts Options) *Loader {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	l := &Loader{tempDir: opts.TempDir, csv: opts.CSV, http: opts.HTTP, ftp: opts.FTP}
	if l.http == nil {
		l.http = fetcher.NewHTTPFetcher(fetcher.HTTPOptions{Timeout: opts.Timeout})
	}
	if l.ftp == nil {
		l.ftp = fetcher.NewFTPFetcher(fetcher.FTPOptions{Timeout: opts.Timeout})
	}
	return l
}

// Resolve makes src available as a local file. Remote sources are downloaded
// and archives extracted into a scratch directory; cleanup removes it and must
// always be called.
func (l *Loader) Resolve(ctx context.Context, src string) (local string, cleanup func(), err error) {
	cleanup = func() {}

	var scratch string
	scratchDir := func() (string, error) {
		if scratch != "" {
			return scratch, nil
		}
		dir, mkErr := os.MkdirTemp(l.tempDir, "housing-*")
		if mkErr != nil {
			return "", eris.Wrap(mkErr, "loader: create temp dir")
		}
		scratch = dir
		cleanup = func() {
			if rmErr := os.RemoveAll(dir); rmErr != nil {
				zap.L().Warn("loader: remove temp dir", zap.String("dir", dir), zap.Error(rmErr))
			}
		}
		return dir, nil
	}
	fail := func(e error) (string, func(), error) {
		cleanup()
		return "", func() {}, e
	}

	local = src
	if f, name, remote := l.remoteFetcher(src); remote {
		dir, dirErr := scratchDir()
		if dirErr != nil {
			return fail(dirErr)
		}
		local = filepath.Join(dir, name)
		start := time.Now()
		n, dlErr := f.DownloadToFile(ctx, src, local)
		if dlErr != nil {
			if errors.Is(dlErr, fetcher.ErrNotFound) {
				return fail(&NotFoundError{Path: src, Err: dlErr})
			}
			return fail(eris.Wrapf(dlErr, "loader: download %s", src))
		}
		zap.L().Debug("loader: downloaded",
			zap.String("source", src),
			zap.Int64("bytes", n),
			zap.Duration("elapsed", time.Since(start)),
		)
	} else if _, statErr := os.Stat(local); statErr != nil {
		if errors.Is(statErr, os.ErrNotExist) {
			return fail(&NotFoundError{Path: src, Err: statErr})
		}
		return fail(eris.Wrapf(statErr, "loader: stat %s", src))
	}

	if strings.EqualFold(filepath.Ext(local), ".zip") {
		dir, dirErr := scratchDir()
		if dirErr != nil {
			return fail(dirErr)
		}
		extracted, zipErr := fetcher.ExtractZIPSingle(local, filepath.Join(dir, "unzipped"))
		if zipErr != nil {
			return fail(eris.Wrapf(zipErr, "loader: extract %s", src))
		}
		local = extracted
	}

	return local, cleanup, nil
}

// remoteFetcher picks the fetcher for a URL source and the file name to
// download it as. remote is false for local paths.
func (l *Loader) remoteFetcher(src string) (f fetcher.Fetcher, name string, remote bool) {
	u, err := url.Parse(src)
	if err != nil || u.Host == "" {
		return nil, "", false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		f = l.http
	case "ftp":
		f = l.ftp
	default:
		return nil, "", false
	}
	name = path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		name = "download.csv"
	}
	return f, name, true
}

// readTable resolves src and parses it as CSV or, by extension, XLSX.
func (l *Loader) readTable(ctx context.Context, src string) (*fetcher.Table, error) {
	local, cleanup, err := l.Resolve(ctx, src)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	if strings.EqualFold(filepath.Ext(local), ".xlsx") {
		t, xlErr := fetcher.ReadXLSX(local, fetcher.XLSXOptions{})
		if xlErr != nil {
			return nil, eris.Wrapf(xlErr, "loader: read %s", src)
		}
		return t, nil
	}

	file, err := os.Open(local)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: open %s", src)
	}
	defer file.Close() //nolint:errcheck

	t, err := fetcher.ReadTable(ctx, file, l.csv)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: read %s", src)
	}
	return t, nil
}
