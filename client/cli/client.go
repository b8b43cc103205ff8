package main

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/kftp/kftp/pkg/logging"
	"github.com/kftp/kftp/shared/kftp"
	"github.com/kftp/kftp/shared/rudp"
)

// prompt is printed before each accepted command. The bytes are fixed,
// including the trailing space after the marker.
const prompt = "Please enter one of the following messages: \n" +
	"\tget <file_name>\n" +
	"\tput <file_name>\n" +
	"\tdelete <file_name>\n" +
	"\tls\n" +
	"\texit\n" +
	"> "

// Client drives the interactive command loop against one server.
type Client struct {
	session  *rudp.Session
	sender   *kftp.Sender
	receiver *kftp.Receiver
	server   *net.UDPAddr
	in       *bufio.Reader
	out      io.Writer
	logger   *logging.Logger
}

// NewClient creates a client talking to server over session, reading
// commands from in and writing prompt and responses to out.
func NewClient(session *rudp.Session, server *net.UDPAddr, in io.Reader, out io.Writer, logger *logging.Logger) *Client {
	return &Client{
		session:  session,
		sender:   kftp.NewSender(session),
		receiver: kftp.NewReceiver(session),
		server:   server,
		in:       bufio.NewReader(in),
		out:      out,
		logger:   logger,
	}
}

// Run prompts, reads, and executes commands until exit or end of input.
// A failed command (a transport timeout, say) terminates that command only.
func (c *Client) Run() error {
	for {
		fmt.Fprint(c.out, prompt)

		line, err := c.in.ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("failed to read command: %w", err)
		}

		command := strings.TrimSuffix(line, "\n")
		if command != "" {
			exit, cmdErr := c.runCommand(command)
			if cmdErr != nil {
				c.logger.Errorf("command %q failed: %v", command, cmdErr)
			}
			if exit {
				return nil
			}
		}
		if err == io.EOF {
			return nil
		}
	}
}

// runCommand sends one command and completes its exchange. Well-formed get
// and put commands engage KFTP; everything else, well-formed or not, gets a
// plain RUDP reply which is echoed to the output.
func (c *Client) runCommand(command string) (bool, error) {
	fields := strings.Fields(command)
	var op string
	if len(fields) > 0 {
		op = fields[0]
	}

	switch {
	case op == "get" && len(fields) == 2:
		return false, c.get(command, fields[1])
	case op == "put" && len(fields) == 2:
		return false, c.put(command, fields[1])
	default:
		if err := c.session.Send([]byte(command), c.server); err != nil {
			return false, err
		}
		response, addr, err := c.session.Receive()
		if err != nil {
			return false, err
		}
		if addr == nil {
			return false, fmt.Errorf("no response from %s", c.server)
		}
		fmt.Fprintf(c.out, "%s\n", response)
		return op == "exit" && len(fields) == 1, nil
	}
}

// get requests a file and stores the received bytes at the same local path.
func (c *Client) get(command, path string) error {
	if err := c.session.Send([]byte(command), c.server); err != nil {
		return err
	}

	data, _, err := c.receiver.Receive()
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to store %s: %w", path, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to store %s: %w", path, err)
	}
	c.logger.Info("fetched file", logging.Fields{"path": path, "bytes": len(data)})
	return nil
}

// put streams a local file to the server. The file is read before the
// command is sent so a missing file doesn't leave the server waiting on a
// transfer that will never start.
func (c *Client) put(command, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := c.session.Send([]byte(command), c.server); err != nil {
		return err
	}
	if err := c.sender.Send(data, c.server); err != nil {
		return err
	}
	c.logger.Info("uploaded file", logging.Fields{"path": path, "bytes": len(data)})
	return nil
}
