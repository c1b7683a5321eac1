package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"eventflow/internal/graph"
	"eventflow/internal/store"
)

type Server struct {
	db     store.Store
	engine *graph.Engine
	mcp    *sdk.Server
}

func NewServer(db store.Store, version string) *Server {
	s := &Server{
		db:     db,
		engine: graph.New(db),
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "eventflow",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}
