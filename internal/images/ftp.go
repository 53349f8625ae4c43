package images

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jlaffaye/ftp"
)

// FTPConfig holds the connection settings of an FTP image store.
type FTPConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	// Dir is the remote directory images are written to.
	Dir string
	// BaseURL is the public URL that serves Dir.
	BaseURL string
}

// FTPStore uploads images to an FTP server.
type FTPStore struct {
	cfg FTPConfig

	mu   sync.Mutex
	conn *ftp.ServerConn
}

// NewFTPStore creates a store; the connection is opened lazily.
func NewFTPStore(cfg FTPConfig) *FTPStore {
	if cfg.Dir == "" {
		cfg.Dir = "circle_images"
	}
	return &FTPStore{cfg: cfg}
}

func (s *FTPStore) connect(ctx context.Context) error {
	addr := s.cfg.Host + ":" + s.cfg.Port
	conn, err := ftp.Dial(addr, ftp.DialWithTimeout(10*time.Second), ftp.DialWithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to connect to FTP: %w", err)
	}

	if err := conn.Login(s.cfg.User, s.cfg.Password); err != nil {
		conn.Quit()
		return fmt.Errorf("failed to login to FTP: %w", err)
	}

	s.conn = conn
	return nil
}

// RemotePath returns the path an image named name is stored under.
func (s *FTPStore) RemotePath(name, contentType string) string {
	ext := ".img"
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		ext = exts[0]
	}
	prefix := strings.Trim(name, "/ ")
	if prefix == "" {
		prefix = "image"
	}
	return path.Join(s.cfg.Dir, fmt.Sprintf("%s_%s%s", prefix, uuid.New().String(), ext))
}

// URL returns the public URL of a stored file.
func (s *FTPStore) URL(remotePath string) string {
	return strings.TrimRight(s.cfg.BaseURL, "/") + "/" + remotePath
}

func (s *FTPStore) Upload(ctx context.Context, name, contentType string, data []byte) (string, error) {
	mediaType, err := checkImage(contentType, data)
	if err != nil {
		return "", err
	}
	remotePath := s.RemotePath(name, mediaType)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		if err := s.connect(ctx); err != nil {
			return "", err
		}
	}

	if err := s.conn.Stor(remotePath, bytes.NewReader(data)); err != nil {
		// Drop the connection so the next upload reconnects
		s.conn.Quit()
		s.conn = nil
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	return s.URL(remotePath), nil
}

// Close closes the FTP connection.
func (s *FTPStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		err := s.conn.Quit()
		s.conn = nil
		return err
	}
	return nil
}
