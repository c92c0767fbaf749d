package battleship

const (
	ShipIdDestroyer uint8 = iota
	ShipIdSubmarine
	ShipIdCruiser
	ShipIdBattleship
	ShipIdCarrier
)

const (
	MarkerEmpty rune = '0'

	MarkerDestroyer  rune = '2'
	MarkerSubmarine  rune = '3'
	MarkerCruiser    rune = '³' // has the same length as the submarine
	MarkerBattleship rune = '4'
	MarkerCarrier    rune = '5'
)

type Ship struct {
	Id     uint8
	Name   string
	Length int
	Marker rune
}

// Fleet lists the ships every player must place, in placement order.
var Fleet = []Ship{
	{Id: ShipIdDestroyer, Name: "Destroyer", Length: 2, Marker: MarkerDestroyer},
	{Id: ShipIdSubmarine, Name: "Submarine", Length: 3, Marker: MarkerSubmarine},
	{Id: ShipIdCruiser, Name: "Cruiser", Length: 3, Marker: MarkerCruiser},
	{Id: ShipIdBattleship, Name: "Battleship", Length: 4, Marker: MarkerBattleship},
	{Id: ShipIdCarrier, Name: "Carrier", Length: 5, Marker: MarkerCarrier},
}

func FleetSize() int {
	total := 0
	for _, ship := range Fleet {
		total += ship.Length
	}
	return total
}

func ShipByMarker(marker rune) (Ship, bool) {
	for _, ship := range Fleet {
		if ship.Marker == marker {
			return ship, true
		}
	}
	return Ship{}, false
}

// ShipLog maps a ship marker to the number of its segments not yet hit.
type ShipLog map[rune]int

func NewShipLog() ShipLog {
	shipLog := make(ShipLog, len(Fleet))
	for _, ship := range Fleet {
		shipLog[ship.Marker] = ship.Length
	}
	return shipLog
}

func (sl ShipLog) Remaining() int {
	total := 0
	for _, count := range sl {
		total += count
	}
	return total
}

func (sl ShipLog) IsSunk(marker rune) bool {
	count, prs := sl[marker]
	return prs && count == 0
}

func (sl ShipLog) SunkenShips() int {
	sunken := 0
	for _, count := range sl {
		if count == 0 {
			sunken++
		}
	}
	return sunken
}
