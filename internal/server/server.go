package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ironsheep/glyphflip/internal/flip"
	"github.com/ironsheep/glyphflip/internal/imaging"
	"github.com/ironsheep/glyphflip/internal/logging"
	"github.com/ironsheep/glyphflip/internal/raster"
)

// Version is reported in the initialize handshake. main overrides it from
// its ldflags value.
var Version = "dev"

// Pipeline runs the character tools. *flip.Processor satisfies it, as does
// the OpenCV processor in builds with the opencv tag.
type Pipeline interface {
	Options() flip.Options
	Run(img *raster.Image) (*flip.Result, error)
	Detect(img *raster.Image) (*flip.Result, error)
}

// Backend builds the Pipeline for one tool call from the merged options.
type Backend func(opts flip.Options, log *logging.Logger) Pipeline

// NativeBackend builds the pure-Go pipeline.
func NativeBackend(opts flip.Options, log *logging.Logger) Pipeline {
	return flip.New(opts, log)
}

// Server handles MCP protocol communication
type Server struct {
	cache   *imaging.ImageCache
	opts    flip.Options
	encode  imaging.EncodeOptions
	backend Backend
	log     *logging.Logger
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// MCPNotification represents an outgoing notification (no ID)
type MCPNotification struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// New creates a server with default pipeline settings and PNG output.
func New() *Server {
	return NewWithOptions(flip.DefaultOptions(), imaging.EncodeOptions{}, nil)
}

// NewWithOptions creates a server whose tools start from opts and encode
// returned or saved images with enc. log may be nil.
func NewWithOptions(opts flip.Options, enc imaging.EncodeOptions, log *logging.Logger) *Server {
	return &Server{
		cache:   imaging.NewImageCache(),
		opts:    opts,
		encode:  enc,
		backend: NativeBackend,
		log:     log,
	}
}

// SetBackend replaces the pipeline used by the character tools. A nil
// backend restores the native one.
func (s *Server) SetBackend(b Backend) {
	if b == nil {
		b = NativeBackend
	}
	s.backend = b
}

// Run starts the MCP server, reading from stdin and writing to stdout
func (s *Server) Run() error {
	return s.Serve(os.Stdin, os.Stdout)
}

// Serve reads one JSON-RPC request per line from r and writes responses to w
// until r is exhausted.
func (s *Server) Serve(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.Warn("failed to parse request", "error", err)
			continue
		}
		s.log.Debug("request", "method", req.Method, "id", req.ID)

		resp := s.handleRequest(&req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				s.log.Error("failed to encode response", "error", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "glyphflip",
				"version": Version,
			},
		},
	}
}
