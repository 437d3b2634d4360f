package executor

import (
	"fmt"
	"sync/atomic"
	"testing"
)

func BenchmarkPool_Send(b *testing.B) {
	var processed atomic.Int64

	pool := New("bench", 4, func(int) error {
		processed.Add(1)
		return nil
	}, WithQueueSize(1024))

	producer := pool.Producer()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if err := producer.Send(i); err != nil {
			b.Fatalf("send failed: %v", err)
		}
	}

	b.StopTimer()
	producer.Release()
	if err := pool.Complete(); err != nil {
		b.Fatalf("complete failed: %v", err)
	}
}

func BenchmarkPool_Throughput(b *testing.B) {
	for _, workers := range []int{1, 2, 4, 8} {
		b.Run(fmt.Sprintf("%dworkers", workers), func(b *testing.B) {
			var processed atomic.Int64

			pool := New("bench", workers, func(int) error {
				processed.Add(1)
				return nil
			})

			producer := pool.Producer()
			for i := 0; i < b.N; i++ {
				if err := producer.Send(i); err != nil {
					b.Fatalf("send failed: %v", err)
				}
			}
			producer.Release()

			if err := pool.Complete(); err != nil {
				b.Fatalf("complete failed: %v", err)
			}
		})
	}
}
