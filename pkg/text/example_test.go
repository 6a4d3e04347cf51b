package text_test

import (
	"context"
	"fmt"

	"github.com/walteh/rewriterc/pkg/text"
)

func ExampleTable_Apply() {
	table, err := text.Compile([]text.RuleSpec{
		{Name: "surface", Pattern: "bg-white", Replacement: "bg-card text-card-foreground"},
	}, []text.RuleSpec{
		text.CollapseRepeats("border-border"),
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	content := []byte(`<div class="bg-white border border-border border-border">`)

	result, err := table.Apply(context.Background(), "card.js", content, nil)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("Modified: %s\n", result.ModifiedContent)
	fmt.Printf("Changes: %d\n", result.ReplacementCount)
	fmt.Printf("Applied: %v\n", result.Applied)

	// Output:
	// Modified: <div class="bg-card text-card-foreground border border-border">
	// Changes: 2
	// Applied: [surface collapse border-border]
}

func ExampleCompile() {
	_, err := text.Compile([]text.RuleSpec{
		{Name: "broken", Pattern: "className=\"(.*?\"", Replacement: "x"},
	}, nil)

	fmt.Println(err != nil)

	// Output:
	// true
}
