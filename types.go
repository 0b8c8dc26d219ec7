package landgraph

import (
	"github.com/voidshard/landgraph/internal/heightfield"
	"github.com/voidshard/landgraph/internal/hydro"
	"github.com/voidshard/landgraph/internal/network"
)

// Settlement is a place roads should reach. Callers pick cells & kinds,
// the network may promote a town to a port when linking islands.
type Settlement = network.Settlement

// SettlementKind indicates what role a settlement plays in the network.
// Capitals & ports are terminals: they're joined by primary roads.
// Towns are joined to whatever road is nearest by secondary roads.
type SettlementKind = network.SettlementKind

const (
	Capital = network.Capital // seat of power, always a terminal
	Port    = network.Port    // coastal terminal, sea lanes start & end here
	Town    = network.Town    // everything else
)

// Road is one connection laid by the network builder.
type Road = network.Road

// RoadKind indicates the sort of road.
type RoadKind = network.RoadKind

const (
	Primary   = network.Primary   // between terminals, on land
	Secondary = network.Secondary // from towns to the network
	SeaLane   = network.SeaLane   // between ports, over water
)

// Lake is a body of water above sea level.
type Lake = hydro.Lake

// Template is a named recipe of height field operations.
type Template = heightfield.Template

// TemplateStep is one operation of a Template.
type TemplateStep = heightfield.Step
