// Package serve answers puzzle requests over a newline-delimited JSON stream,
// so a long-lived process can solve many inputs without restarting.
package serve

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Flubio/giftshop"
	"github.com/Flubio/giftshop/pkg/types"
	"go.uber.org/zap"
)

// Version is the server protocol version
const Version = "1.0.0"

// Server reads requests from in and writes one response per request to out.
type Server struct {
	solver  *giftshop.Solver
	encoder *json.Encoder
	decoder *json.Decoder
	logger  *zap.Logger
}

// NewServer creates a new streaming server
func NewServer(solver *giftshop.Solver, in io.Reader, out io.Writer) *Server {
	return &Server{
		solver:  solver,
		encoder: json.NewEncoder(out),
		decoder: json.NewDecoder(bufio.NewReader(in)),
		logger:  zap.NewNop(),
	}
}

// SetLogger sets the logger used for request tracing.
func (s *Server) SetLogger(logger *zap.Logger) {
	s.logger = logger
}

// Run starts the server main loop. It returns nil when the input ends or a
// "close" request arrives, and ctx.Err() when ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.sendReady()

	reqChan := make(chan Request, 1)
	errChan := make(chan error, 1)

	go func() {
		for {
			var req Request
			if err := s.decoder.Decode(&req); err != nil {
				errChan <- err
				return
			}
			select {
			case reqChan <- req:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errChan:
			// A request may still be buffered when the decoder hits EOF.
			for {
				select {
				case req := <-reqChan:
					if s.processRequest(ctx, req) {
						return nil
					}
				default:
					if err == io.EOF {
						return nil
					}
					s.sendError("decode", err.Error())
					return nil
				}
			}
		case req := <-reqChan:
			if s.processRequest(ctx, req) {
				return nil
			}
		}
	}
}

// processRequest handles a single request and returns true if the server should exit
func (s *Server) processRequest(ctx context.Context, req Request) bool {
	s.logger.Debug("request", zap.String("type", req.Type))

	switch req.Type {
	case "solve":
		s.handleSolve(ctx, req.Payload)
	case "scan":
		s.handleScan(ctx, req.Payload)
	case "scan_batch":
		s.handleScanBatch(ctx, req.Payload)
	case "rules":
		s.send("rules", s.solver.Rules())
	case "close":
		return true
	default:
		s.sendError("unknown", "unknown request type: "+req.Type)
	}
	return false
}

func (s *Server) sendReady() {
	rules := s.solver.Rules()
	ids := make([]string, len(rules))
	for i, r := range rules {
		ids[i] = r.ID
	}
	s.send("ready", ReadyData{Version: Version, Rules: ids})
}

func (s *Server) handleSolve(ctx context.Context, payload json.RawMessage) {
	var p SolvePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		s.sendError("solve", err.Error())
		return
	}

	answer, err := s.solver.Solve(ctx, p.Input)
	if err != nil {
		s.sendError("solve", err.Error())
		return
	}
	s.send("solve", answer)
}

func (s *Server) handleScan(ctx context.Context, payload json.RawMessage) {
	var p ScanPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		s.sendError("scan", err.Error())
		return
	}

	data, err := s.scan(ctx, p)
	if err != nil {
		s.sendError("scan", err.Error())
		return
	}
	s.send("scan", data)
}

func (s *Server) handleScanBatch(ctx context.Context, payload json.RawMessage) {
	var p ScanBatchPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		s.sendError("scan_batch", err.Error())
		return
	}

	result := ScanBatchData{Results: make([]ScanBatchResult, len(p.Items))}
	for i, item := range p.Items {
		data, err := s.scan(ctx, item)
		if err != nil {
			result.Results[i].Error = err.Error()
			continue
		}
		result.Results[i].Run = data.Run
		result.Results[i].InvalidIDs = data.InvalidIDs
		result.Total += data.Run.Count
	}
	s.send("scan_batch", result)
}

// scan runs one scan request.
func (s *Server) scan(ctx context.Context, p ScanPayload) (ScanData, error) {
	var data ScanData
	r, err := s.selectRule(p)
	if err != nil {
		return data, err
	}

	var collect func(types.InvalidID) error
	if p.List {
		collect = func(v types.InvalidID) error {
			data.InvalidIDs = append(data.InvalidIDs, v)
			return nil
		}
	}

	data.Run, err = s.solver.ScanRule(ctx, r, p.Input, collect)
	if err != nil {
		return ScanData{}, err
	}
	return data, nil
}

func (s *Server) selectRule(p ScanPayload) (*types.Rule, error) {
	if p.Rule == "" {
		if p.Part == 0 {
			return nil, fmt.Errorf("scan requires part or rule")
		}
		for _, r := range s.solver.Rules() {
			if r.Part == p.Part {
				return r, nil
			}
		}
		return nil, fmt.Errorf("no rule for part %d", p.Part)
	}
	for _, r := range s.solver.Rules() {
		if r.ID == p.Rule {
			return r, nil
		}
	}
	return nil, fmt.Errorf("unknown rule: %s", p.Rule)
}

func (s *Server) send(respType string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.sendError(respType, err.Error())
		return
	}
	s.write(Response{
		Success: true,
		Type:    respType,
		Data:    data,
	})
}

func (s *Server) sendError(reqType string, msg string) {
	s.logger.Debug("request failed", zap.String("type", reqType), zap.String("error", msg))
	s.write(Response{
		Success: false,
		Type:    reqType,
		Error:   msg,
	})
}

// write encodes one response line. A write failure is logged; the client
// sees it as a missing response.
func (s *Server) write(resp Response) {
	if err := s.encoder.Encode(resp); err != nil {
		s.logger.Warn("writing response failed", zap.String("type", resp.Type), zap.Error(err))
	}
}
