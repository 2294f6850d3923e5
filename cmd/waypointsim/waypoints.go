package main

import (
	"fmt"

	"github.com/OCAP2/waypointsim/internal/geo"
)

func cmdWaypoints(a *app) error {
	route, err := loadRoute()
	if err != nil {
		return err
	}

	names := route.Names()
	for i, p := range route.Points() {
		fmt.Fprintf(a.stdout, "%-8s %10.3f %10.3f %10.3f  next %.3f\n",
			names[i], p.X(), p.Y(), p.Z(), route.DistanceToNext(i))
	}
	fmt.Fprintf(a.stdout, "nodes: %d\nlap: %.3f\n", route.Count(), route.LapLength())

	if route.Count() >= 2 {
		ls, err := geo.RouteLineString(route.Points(), true)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "wkt: %s\n", ls.AsText())
	}
	return nil
}
