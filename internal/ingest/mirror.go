package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/textproto"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jlaffaye/ftp"

	"github.com/lox/airdash/internal/metrics"
)

// MirrorConfig describes the FTP directory holding the station CSV files.
type MirrorConfig struct {
	Addr       string // host:port
	RemoteDir  string
	User       string
	Password   string
	Timeout    time.Duration
	MaxElapsed time.Duration
	Force      bool // download even when a local file of equal size exists
}

// MirrorResult lists the files handled by a sync, sorted by name.
type MirrorResult struct {
	Downloaded []string
	Skipped    []string
}

type remoteFile struct {
	Name string
	Size int64
}

type remote interface {
	List(dir string) ([]remoteFile, error)
	Fetch(path string) (io.ReadCloser, error)
	Close() error
}

// Mirror copies *.csv files from an FTP directory into a local data directory.
type Mirror struct {
	cfg        MirrorConfig
	dial       func(ctx context.Context) (remote, error)
	newBackOff func() backoff.BackOff
}

func NewMirror(cfg MirrorConfig) *Mirror {
	if cfg.User == "" {
		cfg.User = "anonymous"
		cfg.Password = "anonymous"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxElapsed == 0 {
		cfg.MaxElapsed = 5 * time.Minute
	}
	m := &Mirror{cfg: cfg}
	m.dial = m.dialFTP
	m.newBackOff = func() backoff.BackOff {
		bo := backoff.NewExponentialBackOff()
		bo.MaxElapsedTime = m.cfg.MaxElapsed
		return bo
	}
	return m
}

// Sync downloads missing or changed files into dataDir. Connection and
// transfer failures are retried with exponential backoff; missing remote
// paths and rejected logins are not.
func (m *Mirror) Sync(ctx context.Context, dataDir string) (*MirrorResult, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	downloaded := make(map[string]bool)
	seen := make(map[string]bool)

	operation := func() error {
		r, err := m.dial(ctx)
		if err != nil {
			return classify(fmt.Errorf("ftp connect: %w", err))
		}
		defer r.Close()

		files, err := r.List(m.cfg.RemoteDir)
		if err != nil {
			return classify(fmt.Errorf("ftp list %s: %w", m.cfg.RemoteDir, err))
		}

		for _, f := range files {
			if err := ctx.Err(); err != nil {
				return backoff.Permanent(err)
			}
			seen[f.Name] = true
			local := filepath.Join(dataDir, f.Name)
			if !m.cfg.Force || downloaded[f.Name] {
				if info, err := os.Stat(local); err == nil && info.Size() == f.Size {
					continue
				}
			}
			if err := download(r, path.Join(m.cfg.RemoteDir, f.Name), local); err != nil {
				metrics.MirrorFilesTotal.WithLabelValues("failed").Inc()
				return classify(fmt.Errorf("download %s: %w", f.Name, err))
			}
			downloaded[f.Name] = true
			metrics.MirrorFilesTotal.WithLabelValues("downloaded").Inc()
			log.Printf("mirror: downloaded %s (%d bytes)", f.Name, f.Size)
		}
		return nil
	}

	bo := backoff.WithContext(m.newBackOff(), ctx)
	notify := func(err error, wait time.Duration) {
		log.Printf("mirror: %v (retrying in %s)", err, wait.Round(time.Millisecond))
	}
	if err := backoff.RetryNotify(operation, bo, notify); err != nil {
		return nil, err
	}

	result := &MirrorResult{}
	for name := range seen {
		if downloaded[name] {
			result.Downloaded = append(result.Downloaded, name)
		} else {
			result.Skipped = append(result.Skipped, name)
			metrics.MirrorFilesTotal.WithLabelValues("skipped").Inc()
		}
	}
	sort.Strings(result.Downloaded)
	sort.Strings(result.Skipped)
	return result, nil
}

// download writes the remote file next to local and renames it into place,
// so a partial transfer never looks like a data file.
func download(r remote, remotePath, local string) error {
	body, err := r.Fetch(remotePath)
	if err != nil {
		return err
	}
	defer body.Close()

	tmp, err := os.CreateTemp(filepath.Dir(local), "."+filepath.Base(local)+".*.part")
	if err != nil {
		return backoff.Permanent(err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return backoff.Permanent(err)
	}
	if err := os.Rename(tmp.Name(), local); err != nil {
		return backoff.Permanent(err)
	}
	return nil
}

// classify marks errors that another attempt cannot fix as permanent.
func classify(err error) error {
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return backoff.Permanent(err)
	}
	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		switch protoErr.Code {
		case ftp.StatusNotLoggedIn, ftp.StatusFileUnavailable, ftp.StatusBadFileName:
			return backoff.Permanent(err)
		}
	}
	return err
}

func (m *Mirror) dialFTP(ctx context.Context) (remote, error) {
	conn, err := ftp.Dial(m.cfg.Addr, ftp.DialWithTimeout(m.cfg.Timeout), ftp.DialWithContext(ctx))
	if err != nil {
		return nil, err
	}
	if err := conn.Login(m.cfg.User, m.cfg.Password); err != nil {
		conn.Quit()
		return nil, fmt.Errorf("ftp login: %w", err)
	}
	return &ftpRemote{conn: conn}, nil
}

type ftpRemote struct {
	conn *ftp.ServerConn
}

func (r *ftpRemote) List(dir string) ([]remoteFile, error) {
	entries, err := r.conn.List(dir)
	if err != nil {
		return nil, err
	}
	var files []remoteFile
	for _, e := range entries {
		if e.Type != ftp.EntryTypeFile || !strings.EqualFold(path.Ext(e.Name), ".csv") {
			continue
		}
		files = append(files, remoteFile{Name: path.Base(e.Name), Size: int64(e.Size)})
	}
	return files, nil
}

func (r *ftpRemote) Fetch(p string) (io.ReadCloser, error) {
	return r.conn.Retr(p)
}

func (r *ftpRemote) Close() error {
	return r.conn.Quit()
}
