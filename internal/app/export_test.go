package service

// Prune runs one pruning pass.
func (s *Service) Prune() int { return s.prune() }
