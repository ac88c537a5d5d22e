package demand

// Package demand samples synthetic vehicle departures for a simulation
// horizon. A Sampler owns its random source so runs are reproducible from a
// seed. Departures are drawn uniformly or around a mid-horizon peak and are
// returned as a Schedule indexed by depart second.
