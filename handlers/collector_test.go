package handlers

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
}

func TestCollect(t *testing.T) {
	ch := make(chan int, 3)
	collector := Collect(ch)

	// write some values
	ch <- 1
	ch <- 2
	ch <- 3
	close(ch)

	values := collector.Read()

	assert.Equal(t, []int{1, 2, 3}, values, "The values read from the channel should match the expected values")
}

func TestCollector_ReadTwice(t *testing.T) {
	ch := make(chan int, 3)

	collector := Collect(ch)
	time.Sleep(100 * time.Millisecond) // Ensure the goroutine has time to read from the channel

	ch <- 4
	ch <- 5
	ch <- 6
	close(ch)

	read1 := collector.Read()
	assert.Equal(t, []int{4, 5, 6}, read1, "The values read from the channel should match the expected values")

	read2 := collector.Read()
	assert.Equal(t, []int{4, 5, 6}, read2, "Read should return the same values on repeated calls")
}
