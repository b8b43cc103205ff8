package main

import (
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/kftp/kftp/pkg/logging"
	"github.com/kftp/kftp/shared/kftp"
	"github.com/kftp/kftp/shared/rudp"
)

// Normative response strings. The exact bytes matter: the delete reply
// carries a trailing newline, the others do not.
const (
	deletedResponse = "Deleted file\n"
	exitingResponse = "Exiting gracefully"
	invalidPrefix   = "Invalid command: "
)

// Dispatcher reads commands over RUDP and routes them to file handlers. File
// responses travel over KFTP; short control responses travel over plain
// RUDP. Requests are served one at a time.
type Dispatcher struct {
	session  *rudp.Session
	sender   *kftp.Sender
	receiver *kftp.Receiver
	rootDir  string
	logger   *logging.Logger
}

// NewDispatcher creates a dispatcher serving files under rootDir.
func NewDispatcher(session *rudp.Session, rootDir string, logger *logging.Logger) *Dispatcher {
	return &Dispatcher{
		session:  session,
		sender:   kftp.NewSender(session),
		receiver: kftp.NewReceiver(session),
		rootDir:  rootDir,
		logger:   logger,
	}
}

// Serve handles requests until an exit command arrives. Per-request errors
// (a client that stopped acking mid-response, say) terminate that operation
// only; the loop keeps serving. A broken endpoint ends it with an error.
func (d *Dispatcher) Serve() error {
	for {
		exit, err := d.HandleNext()
		if err != nil {
			return err
		}
		if exit {
			return nil
		}
	}
}

// HandleNext waits for one command and handles it. It returns true once the
// exit command has been acknowledged. An idle receive timeout is not an
// error; it simply returns (false, nil). Handler failures are logged, not
// returned: only a failing endpoint read is fatal to the loop.
func (d *Dispatcher) HandleNext() (bool, error) {
	data, addr, err := d.session.Receive()
	if err != nil {
		return false, err
	}
	if addr == nil {
		return false, nil
	}

	command := strings.TrimSuffix(string(data), "\n")
	d.logger.Debug("received command", logging.Fields{"command": command, "peer": addr.String()})

	exit, err := d.dispatch(command, addr)
	if err != nil {
		d.logger.Warn("request aborted", logging.Fields{"command": command, "error": err.Error()})
	}
	return exit, nil
}

func (d *Dispatcher) dispatch(command string, addr *net.UDPAddr) (bool, error) {
	fields := strings.Fields(command)
	var op string
	if len(fields) > 0 {
		op = fields[0]
	}

	switch {
	case op == "get" && len(fields) == 2:
		return false, d.handleGet(fields[1], addr)
	case op == "put" && len(fields) == 2:
		return false, d.handlePut(fields[1], addr)
	case op == "delete" && len(fields) == 2:
		return false, d.handleDelete(fields[1], addr)
	case op == "ls" && len(fields) == 1:
		return false, d.handleLs(addr)
	case op == "exit" && len(fields) == 1:
		if err := d.session.Send([]byte(exitingResponse), addr); err != nil {
			return false, err
		}
		d.logger.Info("exit requested, shutting down")
		return true, nil
	default:
		return false, d.session.Send([]byte(invalidPrefix+command), addr)
	}
}

// handleGet streams the file's bytes to the requester over KFTP. A missing
// or unreadable file yields an empty payload rather than an error reply.
func (d *Dispatcher) handleGet(path string, addr *net.UDPAddr) error {
	data, err := os.ReadFile(d.resolve(path))
	if err != nil {
		d.logger.Warn("get failed, sending empty payload", logging.Fields{"path": path, "error": err.Error()})
		data = nil
	}
	return d.sender.Send(data, addr)
}

// handlePut receives the file's bytes over KFTP and writes them to path.
func (d *Dispatcher) handlePut(path string, addr *net.UDPAddr) error {
	data, _, err := d.receiver.Receive()
	if err != nil {
		return err
	}

	target := d.resolve(path)
	if dir := filepath.Dir(target); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(target, data, 0644); err != nil {
		return err
	}
	d.logger.Info("stored file", logging.Fields{"path": path, "bytes": len(data)})
	return nil
}

// handleDelete removes the file and confirms over RUDP. A missing file gets
// an empty reply.
func (d *Dispatcher) handleDelete(path string, addr *net.UDPAddr) error {
	if err := os.Remove(d.resolve(path)); err != nil {
		d.logger.Warn("delete failed", logging.Fields{"path": path, "error": err.Error()})
		return d.session.Send(nil, addr)
	}
	return d.session.Send([]byte(deletedResponse), addr)
}

// handleLs replies with the newline-separated names of the files in the
// served directory.
func (d *Dispatcher) handleLs(addr *net.UDPAddr) error {
	entries, err := os.ReadDir(d.rootDir)
	if err != nil {
		return err
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return d.session.Send([]byte(strings.Join(names, "\n")), addr)
}

func (d *Dispatcher) resolve(path string) string {
	return filepath.Join(d.rootDir, path)
}
