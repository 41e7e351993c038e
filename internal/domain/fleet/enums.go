package fleet

// NavStatus is a ship's navigation status
type NavStatus string

const (
	NavStatusDocked    NavStatus = "DOCKED"
	NavStatusInOrbit   NavStatus = "IN_ORBIT"
	NavStatusInTransit NavStatus = "IN_TRANSIT"
)

// FlightMode controls fuel consumption and speed for a leg
type FlightMode string

const (
	FlightModeCruise  FlightMode = "CRUISE"
	FlightModeDrift   FlightMode = "DRIFT"
	FlightModeBurn    FlightMode = "BURN"
	FlightModeStealth FlightMode = "STEALTH"
)

// Role is a ship's registered role
type Role string

const (
	RoleExcavator Role = "EXCAVATOR"
	RoleSatellite Role = "SATELLITE"
	RoleCommand   Role = "COMMAND"
	RoleHauler    Role = "HAULER"
)

// IsProbe reports whether the role scouts markets rather than mines
func (r Role) IsProbe() bool {
	return r == RoleSatellite
}
