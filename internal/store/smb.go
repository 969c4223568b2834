package store

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hirochachacha/go-smb2"
)

// SMBConfig holds the connection settings for an SMB share.
type SMBConfig struct {
	Host     string
	Port     int
	Share    string
	User     string
	Password string
	Domain   string

	// DialTimeout bounds the TCP connect only; file operations block.
	DialTimeout time.Duration
}

// SMBStore is a Store on a mounted SMB share.
type SMBStore struct {
	conn    net.Conn
	session *smb2.Session
	share   *smb2.Share
}

// DialSMB connects, authenticates with NTLM and mounts the share.
func DialSMB(cfg SMBConfig) (*SMBStore, error) {
	port := cfg.Port
	if port == 0 {
		port = 445
	}

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(port))
	conn, err := net.DialTimeout("tcp", addr, cfg.DialTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	dialer := &smb2.Dialer{
		Initiator: &smb2.NTLMInitiator{
			User:     cfg.User,
			Password: cfg.Password,
			Domain:   cfg.Domain,
		},
	}

	session, err := dialer.Dial(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to authenticate to %s: %w", addr, err)
	}

	shareName := fmt.Sprintf(`\\%s\%s`, cfg.Host, cfg.Share)
	share, err := session.Mount(shareName)
	if err != nil {
		session.Logoff()
		conn.Close()
		return nil, fmt.Errorf("failed to mount %s: %w", shareName, err)
	}

	return &SMBStore{conn: conn, session: session, share: share}, nil
}

// List implements Store.
func (s *SMBStore) List(dir string) ([]Entry, error) {
	infos, err := s.share.ReadDir(smbPath(dir))
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, Entry{Name: info.Name(), IsDir: info.IsDir()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Open implements Store.
func (s *SMBStore) Open(name string) (io.ReadCloser, error) {
	return s.share.Open(smbPath(name))
}

// Create implements Store.
func (s *SMBStore) Create(name string) (io.WriteCloser, error) {
	return s.share.Create(smbPath(name))
}

// Mkdir implements Store.
func (s *SMBStore) Mkdir(dir string) error {
	return s.share.MkdirAll(smbPath(dir), 0o755)
}

// Remove implements Store.
func (s *SMBStore) Remove(name string) error {
	return s.share.Remove(smbPath(name))
}

// Close unmounts the share and logs off.
func (s *SMBStore) Close() error {
	var errs []error
	if err := s.share.Umount(); err != nil {
		errs = append(errs, fmt.Errorf("umount: %w", err))
	}
	if err := s.session.Logoff(); err != nil {
		errs = append(errs, fmt.Errorf("logoff: %w", err))
	}
	if err := s.conn.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// smbPath converts a slash-separated store path into share syntax.
func smbPath(p string) string {
	p = strings.Trim(p, "/")
	if p == "." {
		return ""
	}
	return strings.ReplaceAll(p, "/", `\`)
}
