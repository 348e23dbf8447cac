package graph_test

import (
	"bytes"
	"fmt"

	"github.com/linguamesh/constellation/pkg/graph"
)

func ExampleWriteGraph() {
	g := graph.Graph{
		Nodes: []graph.Node{
			{ID: "hello", X: 120, Y: 80, Tier: graph.TierWhite, Text: "hej"},
			{ID: "thanks", X: 200, Y: 140, Tier: graph.TierWhite, Text: "tack"},
		},
		Edges: []graph.Edge{
			{ID: graph.EdgeID("hello", "thanks"), Source: "hello", Target: "thanks", Strength: 3},
		},
	}

	var buf bytes.Buffer
	if err := graph.WriteGraph(g, &buf); err != nil {
		fmt.Println("Error:", err)
		return
	}

	fmt.Println(buf.String())
	// Output:
	// {
	//   "nodes": [
	//     {
	//       "id": "hello",
	//       "x": 120,
	//       "y": 80,
	//       "tier": 0,
	//       "text": "hej"
	//     },
	//     {
	//       "id": "thanks",
	//       "x": 200,
	//       "y": 140,
	//       "tier": 0,
	//       "text": "tack"
	//     }
	//   ],
	//   "edges": [
	//     {
	//       "id": "hello--thanks",
	//       "source": "hello",
	//       "target": "thanks",
	//       "strength": 3
	//     }
	//   ]
	// }
}
