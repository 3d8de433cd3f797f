package pricing

import "github.com/nurpe/seminar-quote/internal/model"

// Price keys the calculator reads directly. Catering, equipment lines and
// activities carry their own keys in the selection.
const (
	KeyPackageBase   = "1tag.base_price"
	KeySingleRoom    = "rooms.single_per_night"
	KeyDoubleRoom    = "rooms.double_per_night"
	KeyOccupancyTax  = "rooms.naechtigungsabgabe"
	KeyRoomGuarantee = "equipment.raumgarantie"
	KeyBreakoutRoom  = "equipment.gruppenraum_per_day"
)

var defaultPrices = []model.PriceEntry{
	{Path: KeyPackageBase, Price: 74.00},

	{Path: "catering.pause.gemischt", Price: 14.00},
	{Path: "catering.pause.pikant", Price: 12.00},
	{Path: "catering.pause.suess", Price: 8.00},
	{Path: "catering.mittagessen.base", Price: 34.00},
	{Path: "catering.mittagessen.getraenke", Price: 5.00},
	{Path: "catering.abendessen.base", Price: 52.00},
	{Path: "catering.abendessen.upgrade_steak", Price: 87.00},

	{Path: KeySingleRoom, Price: 151.00},
	{Path: KeyDoubleRoom, Price: 118.00},
	{Path: KeyOccupancyTax, Price: 2.50},

	{Path: KeyRoomGuarantee, Price: 200.00},
	{Path: KeyBreakoutRoom, Price: 100.00},
	{Path: "equipment.flipchart", Price: 15.00},
	{Path: "equipment.pinwand", Price: 15.00},
	{Path: "equipment.stellwand", Price: 15.00},
	{Path: "equipment.funkmikrofon", Price: 25.00},
	{Path: "equipment.presenter", Price: 10.00},
	{Path: "equipment.laptop", Price: 50.00},

	{Path: "activities.yoga", Price: 0},
	{Path: "activities.wein", Price: 0},
	{Path: "activities.spirituosen", Price: 0},
	{Path: "activities.zotter", Price: 0},
	{Path: "activities.vulcano", Price: 0},
	{Path: "activities.ebike", Price: 0},
}

// DefaultTable returns a fresh copy of the built-in price table used when
// neither the remote source nor the local file can be read.
func DefaultTable() model.PriceTable {
	table := model.NewPriceTable()
	for _, entry := range defaultPrices {
		table.Set(entry.Path, entry.Price)
	}
	return table
}
