package server

// reaperLoop implements spec §4.6. It runs for the entire lifetime of
// the Server (started in New, joined only in Close), independent of
// Mobilize/Demobilize: under the lock, swap out the broken map; release
// the lock; drop the swapped-out map (in a systems language this is
// where ConnectionState destruction, and so Connection destruction,
// would run — in Go the garbage collector reclaims it once the last
// reference drops, which happens right here, off whatever thread is
// currently executing a delegate); reacquire the lock and wait until
// either shutdown is signaled or the broken map is non-empty again.
func (s *Server) reaperLoop() {
	defer close(s.reaperDone)

	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		for len(s.broken) == 0 {
			select {
			case <-s.stopReaper:
				return
			default:
			}

			s.reaperCond.Wait()

			select {
			case <-s.stopReaper:
				return
			default:
			}
		}

		s.drop(s.broken)
		s.broken = make(map[uint64]*connState)
	}
}

// drop releases the lock while letting dying go out of scope, so that
// nothing downstream of the reaper runs with the server mutex held.
func (s *Server) drop(dying map[uint64]*connState) {
	s.mu.Unlock()
	defer s.mu.Lock()

	for range dying {
	}
}
