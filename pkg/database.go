package qvectors

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	sqlx "github.com/jmoiron/sqlx" //make alias name the package to sqlx
)

func ConnectToDatabase(user string, pass string, host string, dbname string) (*sqlx.DB, error) {
	port := "3306"
	dbURI := fmt.Sprintf("%s:%s@(%s:%s)/%s?parseTime=true", user, pass, host, port, dbname)
	db, err := sqlx.Connect("mysql", dbURI)
	return db, err
}

// DBConditions reads conditions from the MySQL conditions database. Every
// table carries the validity range of its rows in MinRun and MaxRun.
type DBConditions struct {
	db *sqlx.DB
}

func NewDBConditions(db *sqlx.DB) *DBConditions {
	return &DBConditions{db: db}
}

type ChannelPositionEntry struct {
	Channel int     `db:"Channel"`
	X       float64 `db:"X"`
	Y       float64 `db:"Y"`
}

type AlignmentEntry struct {
	Part int     `db:"Part"`
	X    float64 `db:"X"`
	Y    float64 `db:"Y"`
}

type GainEntry struct {
	Channel int     `db:"Channel"`
	Gain    float64 `db:"Gain"`
}

const (
	alignmentQuery   = "SELECT Part, X, Y FROM AlignmentOffsets WHERE Detector = ? AND MinRun <= ? AND MaxRun >= ? ORDER BY Part"
	positionsQuery   = "SELECT Channel, X, Y FROM ChannelPositions WHERE Detector = ? AND MinRun <= ? AND MaxRun >= ? ORDER BY Channel"
	gainsQuery       = "SELECT Channel, Gain FROM RelativeGains WHERE Detector = ? AND MinRun <= ? AND MaxRun >= ? ORDER BY Channel"
	calibrationQuery = "SELECT Harmonic, Subsystem, CentBin, MeanX, MeanY, TwistA, TwistB, RescaleX, RescaleY " +
		"FROM QvecCalibration WHERE Harmonic = ? AND MinRun <= ? AND MaxRun >= ?"
)

func (d *DBConditions) logQuery(what string, query string, run int) {
	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Reading %s for run %d from database", what, run)
		logger.Info(message, "database")
	}
	if configuration.Verbosity > 2 {
		message := fmt.Sprintf("Query: %s", query)
		logger.Info(message, "database")
	}
}

func (d *DBConditions) Alignment(family DetectorFamily, run int) (FamilyAlignment, error) {
	d.logQuery(fmt.Sprintf("%v alignment", family), alignmentQuery, run)
	var rows []AlignmentEntry
	if err := d.db.Select(&rows, alignmentQuery, family.String(), run, run); err != nil {
		return FamilyAlignment{}, fmt.Errorf("error querying database: %w", err)
	}
	return alignmentFromRows(rows)
}

func (d *DBConditions) ChannelPositions(family DetectorFamily, run int) ([]Position, error) {
	d.logQuery(fmt.Sprintf("%v channel positions", family), positionsQuery, run)
	rows, err := d.db.Queryx(positionsQuery, family.String(), run, run)
	if err != nil {
		return nil, fmt.Errorf("error querying database: %w", err)
	}
	defer rows.Close()

	entries := make([]ChannelPositionEntry, 0, family.Channels())
	for rows.Next() {
		result := ChannelPositionEntry{}
		if err := rows.StructScan(&result); err != nil {
			return nil, fmt.Errorf("error scanning DB row: %w", err)
		}
		entries = append(entries, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading DB rows: %w", err)
	}
	return positionsFromRows(family, entries)
}

func (d *DBConditions) RelativeGains(family DetectorFamily, run int) ([]float64, error) {
	d.logQuery(fmt.Sprintf("%v relative gains", family), gainsQuery, run)
	var rows []GainEntry
	if err := d.db.Select(&rows, gainsQuery, family.String(), run, run); err != nil {
		return nil, fmt.Errorf("error querying database: %w", err)
	}
	return gainsFromRows(family, rows)
}

func (d *DBConditions) CalibrationTable(harmonic int, run int) (*CalibrationTable, error) {
	d.logQuery(fmt.Sprintf("v%d calibration", harmonic), calibrationQuery, run)
	var rows []CalibrationEntry
	if err := d.db.Select(&rows, calibrationQuery, harmonic, run, run); err != nil {
		return nil, fmt.Errorf("error querying database: %w", err)
	}
	return buildCalibrationTable(harmonic, rows)
}

// alignmentFromRows expects parts 0 and 1 (A/C for FT0, left/right for FV0).
func alignmentFromRows(rows []AlignmentEntry) (FamilyAlignment, error) {
	var alignment FamilyAlignment
	var seen [2]bool
	for _, row := range rows {
		if row.Part < 0 || row.Part > 1 {
			return alignment, fmt.Errorf("invalid alignment part %d", row.Part)
		}
		alignment[row.Part] = Offset{X: row.X, Y: row.Y}
		seen[row.Part] = true
	}
	if !seen[0] || !seen[1] {
		return alignment, ErrNotFound
	}
	return alignment, nil
}

func positionsFromRows(family DetectorFamily, rows []ChannelPositionEntry) ([]Position, error) {
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	positions := make([]Position, family.Channels())
	seen := make([]bool, family.Channels())
	for _, row := range rows {
		if row.Channel < 0 || row.Channel >= family.Channels() {
			return nil, fmt.Errorf("%v channel %d out of range", family, row.Channel)
		}
		positions[row.Channel] = Position{X: row.X, Y: row.Y}
		seen[row.Channel] = true
	}
	for channel, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("%v channel %d has no position", family, channel)
		}
	}
	return positions, nil
}

// gainsFromRows returns ErrNotFound for an empty table; channels without a
// row keep a unit gain.
func gainsFromRows(family DetectorFamily, rows []GainEntry) ([]float64, error) {
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	gains := unitGains(family)
	for _, row := range rows {
		if row.Channel < 0 || row.Channel >= family.Channels() {
			return nil, fmt.Errorf("%v channel %d out of range", family, row.Channel)
		}
		gains[row.Channel] = row.Gain
	}
	return gains, nil
}
