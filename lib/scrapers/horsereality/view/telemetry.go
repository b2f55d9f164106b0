package view

import (
	"hrtools/lib/telemetry"
)

var tracer = telemetry.Tracer("hrtools.lib.scrapers.horsereality.view")
