package worker

import (
	"context"
	"sync"
	"time"

	"shop_checkout/internal/pkg/events"

	"go.uber.org/zap"
)

// Handler 订单事件处理器，例如 Kafka 发布、App 推送
type Handler interface {
	Name() string
	Handle(ctx context.Context, evt events.OrderEvent) error
}

// HandlerFunc 函数适配器
type HandlerFunc struct {
	HandlerName string
	Fn          func(ctx context.Context, evt events.OrderEvent) error
}

func (h HandlerFunc) Name() string { return h.HandlerName }
func (h HandlerFunc) Handle(ctx context.Context, evt events.OrderEvent) error {
	return h.Fn(ctx, evt)
}

// Task 单个处理器对单个事件的一次投递
type Task struct {
	Event   events.OrderEvent
	Handler Handler
	Retry   int // 已重试次数
}

// Options 工作池参数
type Options struct {
	Workers      int
	QueueSize    int
	MaxRetry     int
	RetryBackoff time.Duration // 第 n 次重试前等待 n*RetryBackoff
	Timeout      time.Duration // 单次处理超时
}

// Pool 订单事件分发工作池
// 状态变更提交后由支付流程投递，处理失败按退避重试，超过次数记入死信日志
type Pool struct {
	taskQueue  chan Task
	retryQueue chan Task
	handlers   []Handler
	opts       Options
	log        *zap.Logger

	wg       sync.WaitGroup
	mu       sync.RWMutex
	closed   bool
	stopOnce sync.Once
	done     chan struct{}
}

// NewPool 创建工作池
func NewPool(opts Options, log *zap.Logger, handlers ...Handler) *Pool {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 1000
	}
	if opts.MaxRetry < 0 {
		opts.MaxRetry = 0
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = time.Second
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	retrySize := opts.QueueSize / 2
	if retrySize == 0 {
		retrySize = 1
	}
	return &Pool{
		taskQueue:  make(chan Task, opts.QueueSize),
		retryQueue: make(chan Task, retrySize),
		handlers:   handlers,
		opts:       opts,
		log:        log,
		done:       make(chan struct{}),
	}
}

// Start 启动 worker 与重试协程
func (p *Pool) Start() {
	for i := 0; i < p.opts.Workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	go p.retryWorker()
	p.log.Info("event worker pool started",
		zap.Int("workers", p.opts.Workers),
		zap.Int("handlers", len(p.handlers)))
}

// Dispatch 把事件投递给每个处理器，不阻塞调用方
// 队列满时丢弃并记入死信日志
func (p *Pool) Dispatch(evt events.OrderEvent) {
	if p == nil {
		return
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.deadLetter(Task{Event: evt}, errPoolClosed)
		return
	}
	for _, h := range p.handlers {
		task := Task{Event: evt, Handler: h}
		select {
		case p.taskQueue <- task:
		default:
			p.deadLetter(task, errQueueFull)
		}
	}
}

// Stop 停止接收新事件，等待已入队事件处理完
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.done)
		close(p.taskQueue)
		p.mu.Unlock()
		p.wg.Wait()
		p.log.Info("event worker pool stopped")
	})
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for task := range p.taskQueue {
		err := p.process(task)
		if err == nil {
			continue
		}

		log := p.log.With(
			zap.Int("worker", id),
			zap.String("handler", task.Handler.Name()),
			zap.String("event", string(task.Event.Type)),
			zap.String("order_id", task.Event.OrderID),
			zap.Error(err))

		if task.Retry >= p.opts.MaxRetry {
			log.Warn("event task exceeded max retries")
			p.deadLetter(task, err)
			continue
		}

		task.Retry++
		select {
		case p.retryQueue <- task:
			log.Info("event task queued for retry", zap.Int("attempt", task.Retry))
		default:
			p.deadLetter(task, errQueueFull)
		}
	}
}

func (p *Pool) retryWorker() {
	for {
		select {
		case <-p.done:
			for {
				select {
				case task := <-p.retryQueue:
					p.deadLetter(task, errPoolClosed)
				default:
					return
				}
			}
		case task := <-p.retryQueue:
			// 延迟重试，避免立即重试
			select {
			case <-time.After(time.Duration(task.Retry) * p.opts.RetryBackoff):
			case <-p.done:
				p.deadLetter(task, errPoolClosed)
				continue
			}
			p.requeue(task)
		}
	}
}

func (p *Pool) requeue(task Task) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.deadLetter(task, errPoolClosed)
		return
	}
	select {
	case p.taskQueue <- task:
	default:
		p.deadLetter(task, errQueueFull)
	}
}

func (p *Pool) process(task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("event handler panic", zap.Any("panic", r), zap.String("handler", task.Handler.Name()))
			err = errHandlerPanic
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), p.opts.Timeout)
	defer cancel()
	return task.Handler.Handle(ctx, task.Event)
}

// deadLetter 事件最终投递失败，只记录日志，订单状态本身已落库
func (p *Pool) deadLetter(task Task, err error) {
	handler := ""
	if task.Handler != nil {
		handler = task.Handler.Name()
	}
	p.log.Error("event dropped",
		zap.String("handler", handler),
		zap.String("event", string(task.Event.Type)),
		zap.String("order_id", task.Event.OrderID),
		zap.Int("retry", task.Retry),
		zap.Error(err))
}
