package catalog

import "time"

func (p *PostgresSource) SetClock(now func() time.Time) { p.now = now }
