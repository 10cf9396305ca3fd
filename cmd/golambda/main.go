// Command golambda evaluates lambda expressions against node trees loaded
// from hyperlambda, JSON or YAML documents.
//
//	golambda eval '@/*/_data/*/?value' --file data.yaml
//	golambda tokens '@/*/"/x+/"/?name'
//	golambda tree --file data.json
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
