package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"

	quill "github.com/quill-vim/quill"
	"github.com/quill-vim/quill/improve"
)

// maxRequestBytes caps one JSON request line.
const maxRequestBytes = 8 * 1024 * 1024

// Handler processes one IPC request and returns a response.
type Handler interface {
	Handle(ctx context.Context, req *quill.Request) *quill.Response
	Close()
}

// Server listens on a Unix domain socket for editor requests. Each
// connection carries one request and is handled on its own goroutine,
// so a pending improvement never blocks other commands.
type Server struct {
	listener net.Listener
	sockPath string
	handler  Handler
}

// NewServer creates an IPC server bound to the given socket path,
// backed by the improvement engine.
func NewServer(sockPath string) (*Server, error) {
	return NewServerWithHandler(sockPath, improve.NewEngine())
}

// NewServerWithHandler creates an IPC server with a custom Handler.
func NewServerWithHandler(sockPath string, handler Handler) (*Server, error) {
	// Remove stale socket file if it exists
	if err := os.Remove(sockPath); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	listener, err := net.Listen("unix", sockPath)
	if err != nil {
		return nil, err
	}

	return &Server{
		listener: listener,
		sockPath: sockPath,
		handler:  handler,
	}, nil
}

// Serve accepts connections and handles requests.
func (s *Server) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return err
		}
		go s.handleConn(conn)
	}
}

// Close shuts down the server, the engine, and removes the socket file.
func (s *Server) Close() {
	s.handler.Close()
	s.listener.Close()
	os.Remove(s.sockPath)
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	// Whole documents travel in one line of JSON; allow a few MB.
	scanner.Buffer(make([]byte, 64*1024), maxRequestBytes)
	if !scanner.Scan() {
		if errors.Is(scanner.Err(), bufio.ErrTooLong) {
			writeResponse(conn, &quill.Response{
				Error: &quill.Error{
					Code:    quill.ErrBadRequest,
					Message: fmt.Sprintf("request too large (over %d bytes)", maxRequestBytes),
				},
			})
		}
		return
	}

	raw := scanner.Bytes()
	slog.Debug("request", "bytes", len(raw))

	var req quill.Request
	if err := json.Unmarshal(raw, &req); err != nil {
		writeResponse(conn, &quill.Response{
			Error: &quill.Error{Code: quill.ErrBadRequest, Message: "invalid request JSON: " + err.Error()},
		})
		return
	}

	resp := s.handler.Handle(context.Background(), &req)
	if resp == nil {
		resp = &quill.Response{
			Error: &quill.Error{Code: quill.ErrBadRequest, Message: "no response from handler"},
		}
	}
	resp.RequestID = req.RequestID

	if resp.Error != nil {
		slog.Debug("response error", "request_id", req.RequestID, "code", resp.Error.Code, "message", resp.Error.Message)
	}
	writeResponse(conn, resp)
}

func writeResponse(conn net.Conn, resp *quill.Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		slog.Error("failed to marshal response", "error", err)
		return
	}
	if _, err := conn.Write(append(data, '\n')); err != nil {
		slog.Debug("failed to write response", "error", err)
	}
}
