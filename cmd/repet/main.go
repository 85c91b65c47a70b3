// Command repet is a small CLI demonstrator for the pkg/repet library:
// it decodes a mixture WAV file, runs one of the REPET pipelines, and
// writes the estimated background (and optionally foreground) back out
// as WAV.
package main

func main() {
	Execute()
}
