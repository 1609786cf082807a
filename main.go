package main

func main() {

	testProbeServerMain()

}
