package ksync

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestPrivatePair(t *testing.T) {
	Convey("private pair rendezvous across goroutines", t, func(c C) {
		a, b := NewPrivatePair()
		done := make(chan struct{})

		go func() {
			c.So(b.Yield(), ShouldBeNil)
			close(done)
		}()

		So(a.Wait(), ShouldBeNil)
		So(a.Post(), ShouldBeNil)

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("rendezvous did not complete")
		}
	})
}

func TestSharedPair(t *testing.T) {
	Convey("shared pair rendezvous across pipes", t, func(c C) {
		a, b, err := NewSharedPair()
		So(err, ShouldBeNil)
		defer a.Close()
		defer b.Close()

		done := make(chan struct{})
		go func() {
			c.So(b.Yield(), ShouldBeNil)
			close(done)
		}()

		So(a.Wait(), ShouldBeNil)
		So(a.Post(), ShouldBeNil)

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("rendezvous did not complete")
		}
	})
}
