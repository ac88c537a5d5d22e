package xmldoc

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/iveel36/spacetime-sim-2020/core/model"
)

const (
	xsiNamespace = "http://www.w3.org/2001/XMLSchema-instance"
	// RoutesSchema is the schema location stamped on routes documents.
	RoutesSchema = "http://sumo.dlr.de/xsd/routes_file.xsd"
)

type routesDocument struct {
	XMLName        xml.Name       `xml:"routes"`
	XSI            string         `xml:"xmlns:xsi,attr"`
	SchemaLocation string         `xml:"xsi:noNamespaceSchemaLocation,attr"`
	Vehicles       []vehicleEntry `xml:"vehicle"`
}

type vehicleEntry struct {
	ID          string `xml:"id,attr"`
	Type        string `xml:"type,attr,omitempty"`
	DepartLane  string `xml:"departLane,attr"`
	ArrivalLane string `xml:"arrivalLane,attr"`
	Depart      string `xml:"depart,attr"`
	DepartSpeed string `xml:"departSpeed,attr"`
}

// WriteRoutes writes recs as a pretty-printed routes document, one vehicle
// element per record in the given order.
func WriteRoutes(w io.Writer, recs []model.DepartureRecord) error {
	doc := routesDocument{
		XSI:            xsiNamespace,
		SchemaLocation: RoutesSchema,
		Vehicles:       make([]vehicleEntry, len(recs)),
	}
	for i, r := range recs {
		doc.Vehicles[i] = vehicleEntry{
			ID:          r.VehicleID,
			Type:        r.VehicleType,
			DepartLane:  r.Route.Origin,
			ArrivalLane: r.Route.Destination,
			Depart:      strconv.Itoa(r.DepartTime),
			DepartSpeed: strconv.FormatFloat(r.DepartSpeed, 'f', -1, 64),
		}
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// WriteRoutesFile writes the routes document to path, creating parent
// directories as needed.
func WriteRoutesFile(path string, recs []model.DepartureRecord) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return WriteRoutes(f, recs)
}
