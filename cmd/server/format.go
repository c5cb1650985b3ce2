package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"tabletop-map/server/models"
	"tabletop-map/server/persistence"
	"tabletop-map/server/services"
)

func printStats(meta models.Metadata, st services.MapStats) {
	fmt.Printf("%s by %s\n", meta.Name, meta.Author)
	fmt.Printf("  grid:        %d x %d\n", st.Columns, st.Rows)
	fmt.Printf("  layers:      %d active\n", st.ActiveLayers)
	fmt.Printf("  cells:       %d stored, %d impassable\n", st.StoredCells, st.ImpassableCells)
	fmt.Printf("  content:     %d spawners, %d objects, %d occupied\n", st.Spawners, st.GameObjects, st.OccupiedCells)
	fmt.Printf("  edges:       %d (%d blocked)\n", st.Edges, st.BlockedEdges)
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LAYER\tACTIVE\tCELLS\tIMPASSABLE\tEDGES\tBLOCKED")
	for _, l := range st.Layers {
		if l.StoredCells == 0 && l.Edges == 0 && !l.Active {
			continue
		}
		fmt.Fprintf(w, "%d\t%t\t%d\t%d\t%d\t%d\n", l.Layer, l.Active, l.StoredCells, l.ImpassableCells, l.Edges, l.BlockedEdges)
	}
	w.Flush()
}

func printTerrain(catalog models.TerrainCatalog) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tCOST\tSTYLE\tDESCRIPTION")
	for _, kind := range models.TerrainKinds {
		p := catalog[kind]
		cost := "impassable"
		if p.Passable() {
			cost = fmt.Sprintf("%g", p.MovementCost)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", kind, cost, p.VisualStyle, p.Description)
	}
	w.Flush()
}

func printMapList(list []persistence.MapSummary) {
	if len(list) == 0 {
		fmt.Println("no stored maps")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tVERSION\tMODIFIED")
	for _, m := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\n", m.Name, m.Version, m.Modified.Format("2006-01-02 15:04"))
	}
	w.Flush()
}
