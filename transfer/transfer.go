package transfer

import (
	"fmt"
	"net"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/pkg/sftp"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh"

	"github.com/mensylisir/taskcores/common"
)

// Config describes the sftp destination host.
type Config struct {
	Address  string        `yaml:"address"`
	Port     int           `yaml:"port"`
	Username string        `yaml:"username"`
	Password string        `yaml:"password"`
	KeyFile  string        `yaml:"keyFile"`
	Timeout  time.Duration `yaml:"timeout"`
	BaseDir  string        `yaml:"baseDir"`
}

// Uploader pushes files to a remote host over sftp. The destination class
// selects a subdirectory under the configured base directory, so different
// report kinds land in different remote locations.
type Uploader struct {
	cfg Config
	log *logrus.Entry
}

// NewUploader creates an uploader for the given destination.
func NewUploader(cfg Config, log *logrus.Entry) *Uploader {
	if cfg.Port == 0 {
		cfg.Port = 22
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Uploader{cfg: cfg, log: log}
}

// Upload copies localPath to the destination class directory. It reports
// success as a bool; the failure details are logged.
func (u *Uploader) Upload(destClass, localPath string) bool {
	if err := u.upload(destClass, localPath); err != nil {
		u.log.Errorf("Upload of %s to %s failed: %v", localPath, destClass, err)
		return false
	}
	u.log.Infof("Uploaded %s to %s.", localPath, destClass)
	return true
}

// UploadWithRetry retries Upload a fixed number of attempts with a fixed
// delay between them, returning true as soon as one attempt succeeds.
func (u *Uploader) UploadWithRetry(destClass, localPath string, attempts int, delay time.Duration) bool {
	if attempts < 1 {
		attempts = 1
	}
	for i := 1; i <= attempts; i++ {
		if u.Upload(destClass, localPath) {
			return true
		}
		if i < attempts {
			u.log.Warnf("Upload attempt %d/%d for %s failed, retrying in %s.", i, attempts, localPath, delay)
			time.Sleep(delay)
		}
	}
	return false
}

func (u *Uploader) upload(destClass, localPath string) error {
	client, conn, err := u.dial()
	if err != nil {
		return err
	}
	defer conn.Close()
	defer client.Close()

	src, err := os.Open(localPath)
	if err != nil {
		return errors.Wrapf(err, "failed to open local file %s", localPath)
	}
	defer src.Close()

	remoteDir := path.Join(u.cfg.BaseDir, destClass)
	if err := client.MkdirAll(remoteDir); err != nil {
		return errors.Wrapf(err, "failed to create remote directory %s", remoteDir)
	}

	remotePath := path.Join(remoteDir, filepath.Base(localPath))
	dst, err := client.Create(remotePath)
	if err != nil {
		return errors.Wrapf(err, "failed to create remote file %s", remotePath)
	}
	defer dst.Close()

	if _, err := dst.ReadFrom(src); err != nil {
		return errors.Wrapf(err, "failed to write remote file %s", remotePath)
	}
	if err := client.Chmod(remotePath, common.FileMode0644); err != nil {
		u.log.Warnf("Failed to chmod remote file %s: %v", remotePath, err)
	}
	return nil
}

func (u *Uploader) dial() (*sftp.Client, *ssh.Client, error) {
	authMethods := make([]ssh.AuthMethod, 0, 2)
	if u.cfg.KeyFile != "" {
		key, err := os.ReadFile(u.cfg.KeyFile)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "failed to read key file %s", u.cfg.KeyFile)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to parse private key")
		}
		authMethods = append(authMethods, ssh.PublicKeys(signer))
	}
	if u.cfg.Password != "" {
		authMethods = append(authMethods, ssh.Password(u.cfg.Password))
	}
	if len(authMethods) == 0 {
		return nil, nil, errors.New("no authentication method configured for sftp upload")
	}

	sshCfg := &ssh.ClientConfig{
		User:            u.cfg.Username,
		Auth:            authMethods,
		Timeout:         u.cfg.Timeout,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	}

	addr := net.JoinHostPort(u.cfg.Address, fmt.Sprintf("%d", u.cfg.Port))
	conn, err := ssh.Dial("tcp", addr, sshCfg)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to dial %s", addr)
	}

	client, err := sftp.NewClient(conn)
	if err != nil {
		conn.Close()
		return nil, nil, errors.Wrap(err, "failed to open sftp session")
	}
	return client, conn, nil
}
