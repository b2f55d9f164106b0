package core

import (
	"hrtools/lib/telemetry"
)

var tracer = telemetry.Tracer("hrtools.lib.scrapers.horsereality.core")
var meter = telemetry.Meter("hrtools.lib.scrapers.horsereality.core")

var (
	loginCounter, _        = meter.Int64Counter("horsereality.logins")
	invalidationCounter, _ = meter.Int64Counter("horsereality.invalidations")
	rolloverCounter, _     = meter.Int64Counter("horsereality.rollovers")
	attemptCounter, _      = meter.Int64Counter("horsereality.attempts")
)
