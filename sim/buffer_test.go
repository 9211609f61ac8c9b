package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("Buffer", func() {
	var (
		mockCtrl *gomock.Controller
		buf      Buffer
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		buf = NewBuffer("Buf", 2)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should push and pop in order", func() {
		buf.Push(1)
		buf.Push(2)

		Expect(buf.CanPush()).To(BeFalse())
		Expect(buf.Size()).To(Equal(2))
		Expect(buf.Peek()).To(Equal(1))
		Expect(buf.Pop()).To(Equal(1))
		Expect(buf.Pop()).To(Equal(2))
		Expect(buf.Pop()).To(BeNil())
	})

	It("should panic on overflow", func() {
		buf.Push(1)
		buf.Push(2)

		Expect(func() { buf.Push(3) }).To(Panic())
	})

	It("should invoke hooks on push and pop", func() {
		hook := NewMockHook(mockCtrl)
		push := hook.EXPECT().Func(gomock.Any()).Do(func(ctx HookCtx) {
			Expect(ctx.Pos).To(Equal(HookPosBufPush))
		})
		hook.EXPECT().Func(gomock.Any()).Do(func(ctx HookCtx) {
			Expect(ctx.Pos).To(Equal(HookPosBufPop))
		}).After(push)
		buf.AcceptHook(hook)

		buf.Push(1)
		buf.Pop()
	})

	It("should report free slots", func() {
		Expect(buf.Free()).To(Equal(2))
		buf.Push(1)
		Expect(buf.Free()).To(Equal(1))
	})

	It("should report how many elements a clear dropped", func() {
		hook := NewMockHook(mockCtrl)
		hook.EXPECT().Func(gomock.Any()).Do(func(ctx HookCtx) {
			Expect(ctx.Pos).To(Equal(HookPosBufClear))
			Expect(ctx.Item).To(Equal(2))
		})

		buf.Push(1)
		buf.Push(2)
		buf.AcceptHook(hook)
		buf.Clear()
		buf.Clear()

		Expect(buf.Size()).To(Equal(0))
		Expect(buf.CanPush()).To(BeTrue())
	})

	It("should reject invalid names", func() {
		Expect(func() { NewBuffer("", 1) }).To(Panic())
		Expect(func() { NewBuffer("a b", 1) }).To(Panic())
	})
})
