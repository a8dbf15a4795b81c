package upload

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/textproto"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/jlaffaye/ftp"
	"github.com/pkg/sftp"
	"github.com/zinc-sig/pst/internal/config"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// Transfer protocols of the ftp_sftp provider type
const (
	ProtocolFTP  = "ftp"
	ProtocolFTPS = "ftps"
	ProtocolSFTP = "sftp"
)

// Directory handling of the ftp_sftp provider type
const (
	DirectoryCreateIfMissing = "create_if_missing"
	DirectoryExistingOnly    = "existing_only"
)

const defaultTransferMax = 1000 * mib

// FileTransferAdapter places the payload on an FTP, FTPS or SFTP server and
// derives the public URL from a configured base URL
type FileTransferAdapter struct {
	name      string
	caps      Capabilities
	protocol  string
	addr      string
	username  string
	password  string
	signer    ssh.Signer
	hostKeys  ssh.HostKeyCallback
	directory string
	createDir bool
	publicURL string
	randomize bool
	log       *slog.Logger
}

func newFileTransferAdapter(p config.Provider, opts BuildOptions) (*FileTransferAdapter, error) {
	protocol := strings.ToLower(p.Protocol)
	if protocol == "" {
		protocol = ProtocolSFTP
	}
	if protocol != ProtocolFTP && protocol != ProtocolFTPS && protocol != ProtocolSFTP {
		return nil, config.InvalidProvider(p.Name, fmt.Sprintf("unknown protocol %q", p.Protocol))
	}
	if err := requireField(p, "host", p.Host); err != nil {
		return nil, err
	}
	if err := requireField(p, "username", p.Username); err != nil {
		return nil, err
	}
	if err := requireField(p, "public_url", p.PublicURL); err != nil {
		return nil, err
	}

	mode := p.DirectoryMode
	if mode == "" {
		mode = DirectoryCreateIfMissing
	}
	if mode != DirectoryCreateIfMissing && mode != DirectoryExistingOnly {
		return nil, config.InvalidProvider(p.Name, fmt.Sprintf("unknown directory_mode %q", p.DirectoryMode))
	}

	caps, err := capabilitiesFor(p, defaultTransferMax, bothKinds)
	if err != nil {
		return nil, err
	}

	port := p.Port
	if port == 0 {
		port = defaultPort(protocol)
	}

	a := &FileTransferAdapter{
		name:      p.Name,
		caps:      caps,
		protocol:  protocol,
		addr:      net.JoinHostPort(p.Host, strconv.Itoa(port)),
		username:  p.Username,
		password:  p.Password,
		directory: p.Directory,
		createDir: mode == DirectoryCreateIfMissing,
		publicURL: p.PublicURL,
		randomize: opts.RandomizeNames,
		log:       opts.logger().With("provider", p.Name, "protocol", protocol),
	}

	if protocol == ProtocolSFTP {
		if p.Password == "" && p.SSHPrivateKey == "" {
			return nil, config.InvalidProvider(p.Name, "password or ssh_private_key is required for sftp")
		}
		if p.SSHPrivateKey != "" {
			signer, err := loadSigner(p.SSHPrivateKey, p.SSHKeyPassphrase)
			if err != nil {
				return nil, config.NewError(config.ErrorCodeInvalidProvider, p.Name,
					fmt.Sprintf("provider %q: cannot load ssh key", p.Name), err)
			}
			a.signer = signer
		}
		a.hostKeys, err = hostKeyCallback(p.KnownHosts)
		if err != nil {
			return nil, config.NewError(config.ErrorCodeInvalidProvider, p.Name,
				fmt.Sprintf("provider %q: cannot load known_hosts", p.Name), err)
		}
		if p.KnownHosts == "" {
			a.log.Warn("known_hosts not configured, host key is not verified")
		}
	}
	return a, nil
}

func defaultPort(protocol string) int {
	if protocol == ProtocolSFTP {
		return 22
	}
	return 21
}

// expandHome replaces a leading ~ with the user's home directory
func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

func loadSigner(keyPath, passphrase string) (ssh.Signer, error) {
	pem, err := os.ReadFile(expandHome(keyPath))
	if err != nil {
		return nil, err
	}
	if passphrase != "" {
		return ssh.ParsePrivateKeyWithPassphrase(pem, []byte(passphrase))
	}
	return ssh.ParsePrivateKey(pem)
}

func hostKeyCallback(knownHostsPath string) (ssh.HostKeyCallback, error) {
	if knownHostsPath == "" {
		return ssh.InsecureIgnoreHostKey(), nil
	}
	return knownhosts.New(expandHome(knownHostsPath))
}

// Name returns the provider name
func (a *FileTransferAdapter) Name() string { return a.name }

// Capabilities returns the provider limits
func (a *FileTransferAdapter) Capabilities() Capabilities { return a.caps }

// Upload transfers the payload and returns public_url/<remote name>
func (a *FileTransferAdapter) Upload(ctx context.Context, req *Request) (*Success, error) {
	if err := checkSize(a.name, a.caps, req); err != nil {
		return nil, err
	}

	remote := RemoteName(req, a.randomize)
	a.log.Debug("transferring file", "addr", a.addr, "directory", a.directory, "remote", remote, "size", req.Size())

	var err error
	if a.protocol == ProtocolSFTP {
		err = a.uploadSFTP(ctx, req, remote)
	} else {
		err = a.uploadFTP(ctx, req, remote)
	}
	if err != nil {
		// A closed connection after the deadline surfaces as a network error
		if ctx.Err() != nil {
			return nil, Classify(a.name, fmt.Errorf("%w: %v", ctx.Err(), err))
		}
		return nil, a.classify(err)
	}
	return &Success{Provider: a.name, URL: joinURL(a.publicURL, remote)}, nil
}

func (a *FileTransferAdapter) uploadFTP(ctx context.Context, req *Request, remote string) error {
	tracker := &connTracker{ctx: ctx}
	opts := []ftp.DialOption{ftp.DialWithDialFunc(tracker.dial)}
	if a.protocol == ProtocolFTPS {
		host, _, _ := net.SplitHostPort(a.addr)
		tracker.tls = &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}
		opts = append(opts, ftp.DialWithExplicitTLS(tracker.tls))
	}

	stop := context.AfterFunc(ctx, tracker.closeAll)
	defer func() {
		stop()
		tracker.closeAll()
	}()

	conn, err := ftp.Dial(a.addr, opts...)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Quit() }()

	if err := conn.Login(a.username, a.password); err != nil {
		return err
	}

	if a.directory != "" {
		if a.createDir {
			a.makeFTPDirs(conn)
		}
		if err := conn.ChangeDir(a.directory); err != nil {
			return fmt.Errorf("change directory %s: %w", a.directory, err)
		}
	}
	return conn.Stor(remote, req.Body())
}

// connTracker dials every connection of one FTP session, control and data,
// so that all of them can be closed when the attempt context ends. The ftp
// client does not wrap data connections in TLS when a dial func is set, so
// the tracker does it for FTPS.
type connTracker struct {
	ctx context.Context
	tls *tls.Config

	mu     sync.Mutex
	dialed int
	conns  []net.Conn
	closed bool
}

func (t *connTracker) dial(network, addr string) (net.Conn, error) {
	var d net.Dialer
	conn, err := d.DialContext(t.ctx, network, addr)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		_ = conn.Close()
		return nil, net.ErrClosed
	}
	t.dialed++
	data := t.dialed > 1
	t.conns = append(t.conns, conn)
	t.mu.Unlock()

	if data && t.tls != nil {
		return tls.Client(conn, t.tls), nil
	}
	return conn, nil
}

func (t *connTracker) closeAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	for _, c := range t.conns {
		_ = c.Close()
	}
	t.conns = nil
}

// makeFTPDirs creates each path component; existing directories make
// MakeDir fail, which is ignored
func (a *FileTransferAdapter) makeFTPDirs(conn *ftp.ServerConn) {
	dir := ""
	if strings.HasPrefix(a.directory, "/") {
		dir = "/"
	}
	for _, part := range strings.Split(strings.Trim(a.directory, "/"), "/") {
		if part == "" {
			continue
		}
		dir = path.Join(dir, part)
		_ = conn.MakeDir(dir)
	}
}

func (a *FileTransferAdapter) uploadSFTP(ctx context.Context, req *Request, remote string) error {
	auth := []ssh.AuthMethod{}
	if a.signer != nil {
		auth = append(auth, ssh.PublicKeys(a.signer))
	}
	if a.password != "" {
		auth = append(auth, ssh.Password(a.password))
	}
	cfg := &ssh.ClientConfig{
		User:            a.username,
		Auth:            auth,
		HostKeyCallback: a.hostKeys,
	}

	var d net.Dialer
	raw, err := d.DialContext(ctx, "tcp", a.addr)
	if err != nil {
		return err
	}
	stop := context.AfterFunc(ctx, func() { _ = raw.Close() })
	defer stop()
	defer raw.Close()

	sshConn, chans, reqs, err := ssh.NewClientConn(raw, a.addr, cfg)
	if err != nil {
		return err
	}
	client := ssh.NewClient(sshConn, chans, reqs)
	defer client.Close()

	sc, err := sftp.NewClient(client)
	if err != nil {
		return err
	}
	defer sc.Close()

	target := remote
	if a.directory != "" {
		dir := expandHome(a.directory)
		if a.createDir {
			if err := sc.MkdirAll(dir); err != nil {
				return fmt.Errorf("create directory %s: %w", dir, err)
			}
		} else if _, err := sc.Stat(dir); err != nil {
			return fmt.Errorf("directory %s: %w", dir, err)
		}
		target = path.Join(filepath.ToSlash(dir), remote)
	}

	f, err := sc.Create(target)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	if _, err := f.ReadFrom(req.Body()); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", target, err)
	}
	return f.Close()
}

// classify maps protocol failures onto provider error kinds
func (a *FileTransferAdapter) classify(err error) *ProviderError {
	var tpErr *textproto.Error
	if errors.As(err, &tpErr) {
		switch {
		case tpErr.Code == ftp.StatusNotLoggedIn:
			return NewError(a.name, ErrAuthFailure, "login rejected", err)
		case tpErr.Code == ftp.StatusExceededStorage:
			return NewError(a.name, ErrSizeExceeded, "storage allocation exceeded", err)
		case tpErr.Code >= 400 && tpErr.Code < 500:
			return NewError(a.name, ErrTransport, "transient server failure", err)
		default:
			return NewError(a.name, ErrRemoteRejected, "server rejected transfer", err)
		}
	}

	var keyErr *knownhosts.KeyError
	if errors.As(err, &keyErr) {
		return NewError(a.name, ErrAuthFailure, "host key verification failed", err)
	}
	if strings.Contains(err.Error(), "unable to authenticate") {
		return NewError(a.name, ErrAuthFailure, "ssh authentication failed", err)
	}

	var statusErr *sftp.StatusError
	if errors.As(err, &statusErr) {
		return NewError(a.name, ErrRemoteRejected, "sftp server rejected transfer", err)
	}
	if errors.Is(err, os.ErrPermission) || errors.Is(err, os.ErrNotExist) {
		return NewError(a.name, ErrRemoteRejected, "sftp server rejected transfer", err)
	}
	return Classify(a.name, err)
}
