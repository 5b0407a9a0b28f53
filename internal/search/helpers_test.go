package search

import "github.com/kraklabs/elspais/internal/graph"

func newReq(id, title string) *graph.Node {
	n := graph.NewNode(id, graph.KindRequirement, title)
	n.Content["level"] = "DEV"
	n.Content["status"] = "Active"
	return n
}

func withBody(n *graph.Node, body string) *graph.Node {
	n.Content["body_text"] = body
	return n
}

func withKeywords(n *graph.Node, kws ...string) *graph.Node {
	n.Content["keywords"] = kws
	return n
}

func newAssertion(id, label, text string) *graph.Node {
	n := graph.NewNode(id, graph.KindAssertion, text)
	n.Content["label"] = label
	n.Content["text"] = text
	return n
}
