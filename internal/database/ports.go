package database

import (
	"database/sql"
	"encoding/json"
	"strings"
)

type Port struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	Country   string   `json:"country"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	AltNames  []string `json:"alt_names"`
}

// PortStore handles database operations for the port gazetteer
type PortStore struct {
	db *sql.DB
}

func NewPortStore(db *sql.DB) *PortStore {
	return &PortStore{db: db}
}

// GetAll returns all ports
func (s *PortStore) GetAll() ([]Port, error) {
	rows, err := s.db.Query(
		`SELECT id, name, country, latitude, longitude, alt_names FROM ports ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ports []Port
	for rows.Next() {
		var port Port
		var altNames string
		err := rows.Scan(&port.ID, &port.Name, &port.Country, &port.Latitude,
			&port.Longitude, &altNames)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(altNames), &port.AltNames); err != nil {
			port.AltNames = nil
		}
		ports = append(ports, port)
	}

	return ports, rows.Err()
}

// FindByName performs a fuzzy (case-insensitive substring) lookup over
// port names and alternates, first match wins.
func (s *PortStore) FindByName(name string) (*Port, error) {
	ports, err := s.GetAll()
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return nil, sql.ErrNoRows
	}

	for i := range ports {
		if portNameMatches(&ports[i], needle) {
			return &ports[i], nil
		}
	}

	return nil, sql.ErrNoRows
}

func portNameMatches(port *Port, needle string) bool {
	candidates := append([]string{port.Name}, port.AltNames...)
	for _, candidate := range candidates {
		lower := strings.ToLower(candidate)
		if strings.Contains(lower, needle) || strings.Contains(needle, lower) {
			return true
		}
	}
	return false
}

// Create creates a new port
func (s *PortStore) Create(port *Port) error {
	altNames, err := json.Marshal(port.AltNames)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(
		`INSERT INTO ports (name, country, latitude, longitude, alt_names) VALUES (?, ?, ?, ?, ?)`,
		port.Name, port.Country, port.Latitude, port.Longitude, string(altNames))
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	port.ID = int(id)
	return nil
}

// Delete deletes a port by ID
func (s *PortStore) Delete(id int) error {
	result, err := s.db.Exec(`DELETE FROM ports WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DefaultPorts returns the built-in gazetteer used to seed new databases.
// Coordinates are decimal degrees.
func DefaultPorts() []Port {
	return []Port{
		{Name: "Singapore", Country: "Singapore", Latitude: 1.2644, Longitude: 103.8401},
		{Name: "Rotterdam", Country: "Netherlands", Latitude: 51.9496, Longitude: 4.1453},
		{Name: "Shanghai", Country: "China", Latitude: 31.2304, Longitude: 121.4910},
		{Name: "Hamburg", Country: "Germany", Latitude: 53.5461, Longitude: 9.9661},
		{Name: "Antwerp", Country: "Belgium", Latitude: 51.2637, Longitude: 4.3869, AltNames: []string{"Antwerpen"}},
		{Name: "Houston", Country: "United States", Latitude: 29.7355, Longitude: -95.0163},
		{Name: "New Orleans", Country: "United States", Latitude: 29.9352, Longitude: -90.0571, AltNames: []string{"NOLA"}},
		{Name: "Santos", Country: "Brazil", Latitude: -23.9535, Longitude: -46.3335},
		{Name: "Paranagua", Country: "Brazil", Latitude: -25.5060, Longitude: -48.5119},
		{Name: "Buenos Aires", Country: "Argentina", Latitude: -34.5997, Longitude: -58.3730},
		{Name: "Rosario", Country: "Argentina", Latitude: -32.9442, Longitude: -60.6505},
		{Name: "Valparaiso", Country: "Chile", Latitude: -33.0360, Longitude: -71.6296},
		{Name: "Durban", Country: "South Africa", Latitude: -29.8700, Longitude: 31.0218},
		{Name: "Richards Bay", Country: "South Africa", Latitude: -28.7953, Longitude: 32.0388},
		{Name: "Mombasa", Country: "Kenya", Latitude: -4.0435, Longitude: 39.6682},
		{Name: "Jebel Ali", Country: "United Arab Emirates", Latitude: 25.0112, Longitude: 55.0613, AltNames: []string{"Dubai"}},
		{Name: "Fujairah", Country: "United Arab Emirates", Latitude: 25.1288, Longitude: 56.3265},
		{Name: "Mumbai", Country: "India", Latitude: 18.9398, Longitude: 72.8355, AltNames: []string{"Bombay", "Nhava Sheva", "JNPT"}},
		{Name: "Chennai", Country: "India", Latitude: 13.0827, Longitude: 80.2707, AltNames: []string{"Madras"}},
		{Name: "Kandla", Country: "India", Latitude: 23.0333, Longitude: 70.2167},
		{Name: "Visakhapatnam", Country: "India", Latitude: 17.6868, Longitude: 83.2185, AltNames: []string{"Vizag"}},
		{Name: "Colombo", Country: "Sri Lanka", Latitude: 6.9535, Longitude: 79.8478},
		{Name: "Chittagong", Country: "Bangladesh", Latitude: 22.3083, Longitude: 91.8000},
		{Name: "Hong Kong", Country: "China", Latitude: 22.2855, Longitude: 114.1577},
		{Name: "Qingdao", Country: "China", Latitude: 36.0671, Longitude: 120.3826},
		{Name: "Ningbo", Country: "China", Latitude: 29.8683, Longitude: 121.5440},
		{Name: "Guangzhou", Country: "China", Latitude: 23.1066, Longitude: 113.2487},
		{Name: "Tianjin", Country: "China", Latitude: 38.9800, Longitude: 117.7500, AltNames: []string{"Xingang"}},
		{Name: "Busan", Country: "South Korea", Latitude: 35.1028, Longitude: 129.0403, AltNames: []string{"Pusan"}},
		{Name: "Tokyo", Country: "Japan", Latitude: 35.6528, Longitude: 139.7594},
		{Name: "Yokohama", Country: "Japan", Latitude: 35.4437, Longitude: 139.6380},
		{Name: "Kaohsiung", Country: "Taiwan", Latitude: 22.6163, Longitude: 120.2654},
		{Name: "Port Klang", Country: "Malaysia", Latitude: 3.0044, Longitude: 101.3925, AltNames: []string{"Klang"}},
		{Name: "Jakarta", Country: "Indonesia", Latitude: -6.1045, Longitude: 106.8865, AltNames: []string{"Tanjung Priok"}},
		{Name: "Surabaya", Country: "Indonesia", Latitude: -7.1997, Longitude: 112.7355},
		{Name: "Samarinda", Country: "Indonesia", Latitude: -0.5022, Longitude: 117.1536},
		{Name: "Newcastle", Country: "Australia", Latitude: -32.9192, Longitude: 151.7900},
		{Name: "Port Hedland", Country: "Australia", Latitude: -20.3111, Longitude: 118.5752},
		{Name: "Hay Point", Country: "Australia", Latitude: -21.2833, Longitude: 149.3000},
		{Name: "Gladstone", Country: "Australia", Latitude: -23.8427, Longitude: 151.2555},
		{Name: "Vancouver", Country: "Canada", Latitude: 49.2863, Longitude: -123.1116},
		{Name: "Seattle", Country: "United States", Latitude: 47.6026, Longitude: -122.3393},
		{Name: "Long Beach", Country: "United States", Latitude: 33.7542, Longitude: -118.2165},
		{Name: "Norfolk", Country: "United States", Latitude: 36.8508, Longitude: -76.2859, AltNames: []string{"Hampton Roads"}},
		{Name: "Baltimore", Country: "United States", Latitude: 39.2667, Longitude: -76.5786},
		{Name: "Savannah", Country: "United States", Latitude: 32.0835, Longitude: -81.0998},
		{Name: "Veracruz", Country: "Mexico", Latitude: 19.2006, Longitude: -96.1370},
		{Name: "Callao", Country: "Peru", Latitude: -12.0508, Longitude: -77.1439},
		{Name: "Gdansk", Country: "Poland", Latitude: 54.4030, Longitude: 18.6700, AltNames: []string{"Danzig"}},
		{Name: "Riga", Country: "Latvia", Latitude: 56.9560, Longitude: 24.0978},
		{Name: "Klaipeda", Country: "Lithuania", Latitude: 55.7068, Longitude: 21.1282},
		{Name: "Odessa", Country: "Ukraine", Latitude: 46.4846, Longitude: 30.7326, AltNames: []string{"Odesa"}},
		{Name: "Constanta", Country: "Romania", Latitude: 44.1667, Longitude: 28.6500},
		{Name: "Novorossiysk", Country: "Russia", Latitude: 44.7239, Longitude: 37.7686},
		{Name: "Istanbul", Country: "Turkey", Latitude: 41.0082, Longitude: 28.9784},
		{Name: "Iskenderun", Country: "Turkey", Latitude: 36.5874, Longitude: 36.1735},
		{Name: "Piraeus", Country: "Greece", Latitude: 37.9421, Longitude: 23.6465},
		{Name: "Alexandria", Country: "Egypt", Latitude: 31.2001, Longitude: 29.9187},
		{Name: "Casablanca", Country: "Morocco", Latitude: 33.6022, Longitude: -7.6198},
		{Name: "Lagos", Country: "Nigeria", Latitude: 6.4419, Longitude: 3.3986, AltNames: []string{"Apapa"}},
		{Name: "Abidjan", Country: "Ivory Coast", Latitude: 5.2893, Longitude: -4.0056},
		{Name: "Algeciras", Country: "Spain", Latitude: 36.1275, Longitude: -5.4440},
		{Name: "Valencia", Country: "Spain", Latitude: 39.4452, Longitude: -0.3161},
		{Name: "Barcelona", Country: "Spain", Latitude: 41.3429, Longitude: 2.1699},
		{Name: "Marseille", Country: "France", Latitude: 43.3365, Longitude: 5.3396, AltNames: []string{"Fos"}},
		{Name: "Le Havre", Country: "France", Latitude: 49.4755, Longitude: 0.1488},
		{Name: "Dunkirk", Country: "France", Latitude: 51.0505, Longitude: 2.3589, AltNames: []string{"Dunkerque"}},
		{Name: "Genoa", Country: "Italy", Latitude: 44.4023, Longitude: 8.9170, AltNames: []string{"Genova"}},
		{Name: "Taranto", Country: "Italy", Latitude: 40.4640, Longitude: 17.2470},
		{Name: "Immingham", Country: "United Kingdom", Latitude: 53.6310, Longitude: -0.1867},
		{Name: "Liverpool", Country: "United Kingdom", Latitude: 53.4084, Longitude: -3.0007},
		{Name: "London", Country: "United Kingdom", Latitude: 51.5050, Longitude: 0.0553, AltNames: []string{"Tilbury"}},
		{Name: "Felixstowe", Country: "United Kingdom", Latitude: 51.9540, Longitude: 1.3510},
		{Name: "Amsterdam", Country: "Netherlands", Latitude: 52.4100, Longitude: 4.8100, AltNames: []string{"IJmuiden"}},
		{Name: "Bremen", Country: "Germany", Latitude: 53.1216, Longitude: 8.7503, AltNames: []string{"Bremerhaven"}},
		{Name: "Gothenburg", Country: "Sweden", Latitude: 57.6858, Longitude: 11.8915, AltNames: []string{"Goteborg"}},
		{Name: "Oslo", Country: "Norway", Latitude: 59.9030, Longitude: 10.7416},
		{Name: "Dammam", Country: "Saudi Arabia", Latitude: 26.4500, Longitude: 50.1000},
		{Name: "Jeddah", Country: "Saudi Arabia", Latitude: 21.4858, Longitude: 39.1925},
		{Name: "Karachi", Country: "Pakistan", Latitude: 24.8076, Longitude: 66.9754},
		{Name: "Bandar Abbas", Country: "Iran", Latitude: 27.1469, Longitude: 56.2090},
		{Name: "Ho Chi Minh City", Country: "Vietnam", Latitude: 10.7769, Longitude: 106.7009, AltNames: []string{"Saigon", "Cat Lai"}},
		{Name: "Haiphong", Country: "Vietnam", Latitude: 20.8651, Longitude: 106.6838},
		{Name: "Bangkok", Country: "Thailand", Latitude: 13.7060, Longitude: 100.5704, AltNames: []string{"Laem Chabang"}},
		{Name: "Manila", Country: "Philippines", Latitude: 14.5833, Longitude: 120.9667},
	}
}
