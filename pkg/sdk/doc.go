// Package vecgate is an in-process Go client for a vector engine, with the
// same validation, embedding and id rules as the vecgate HTTP gateway.
//
// Nothing connects at construction time: the engine channel and the
// embedder are built on first use and shared by every call.
//
//	client, _ := vecgate.New(
//	    vecgate.WithEngine("localhost", 50051),
//	    vecgate.WithEmbedder(myEmbedder),
//	)
//	defer client.Close()
//
//	n, _ := client.Upsert(ctx, []vecgate.Vector{
//	    {Namespace: "docs", Text: "hello world", Metadata: map[string]string{"lang": "en"}},
//	    {Namespace: "docs", ID: "v2", Values: []float32{0.1, 0.2}},
//	})
//
//	matches, _ := client.Search(ctx, vecgate.Query{
//	    Namespace: "docs",
//	    Text:      "greeting",
//	    TopK:      3,
//	})
//
// Engine failures keep their gRPC status; use [StatusOf] to get the HTTP
// status and code the gateway would answer with.
package vecgate
