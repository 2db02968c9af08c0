// Command readupctl administers a ReadUp data directory: it registers readers and
// books, issues access tokens, and prints lifetime reading totals.
package main

func main() {
	Execute()
}
