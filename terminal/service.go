package terminal

import "fmt"

// ServiceName identifies the terminal service in the hub
const ServiceName = "terminal"

// Service manages console lifecycle for the service hub
type Service struct {
	console *Console
}

// NewService creates a terminal service over the process console
func NewService() *Service {
	return &Service{console: NewConsole()}
}

// NewServiceWith wraps an existing console
func NewServiceWith(c *Console) *Service {
	return &Service{console: c}
}

// Name implements service.Service
func (s *Service) Name() string {
	return ServiceName
}

// Dependencies implements service.Service
func (s *Service) Dependencies() []string {
	return nil
}

// Init implements service.Service
func (s *Service) Init(args ...any) error {
	if err := s.console.Init(); err != nil {
		return fmt.Errorf("terminal init: %w", err)
	}
	return nil
}

// Start implements service.Service - launches input polling goroutine
func (s *Service) Start() error {
	s.console.Start()
	return nil
}

// Stop implements service.Service - restores the terminal
func (s *Service) Stop() error {
	s.console.Fini()
	return nil
}

// Console returns the wrapped console
func (s *Service) Console() *Console {
	return s.console
}
