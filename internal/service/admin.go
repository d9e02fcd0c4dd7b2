package service

import "context"

type AdminService struct {
	base
}

// Clear wipes every user, session, channel, DM, and notification and restarts
// the ID sequences. Outstanding tokens stop resolving.
func (s *AdminService) Clear(ctx context.Context) error {
	if err := s.store.Reset(ctx); err != nil {
		return err
	}
	s.logger.Warn("all data cleared")
	return nil
}
