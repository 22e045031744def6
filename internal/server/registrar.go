package server

import "google.golang.org/grpc"

// Registrar is the hook the external transport layer uses to attach its
// generated endpoint services to the server this core boots.
type Registrar interface {
	Register(s *grpc.Server)
}
