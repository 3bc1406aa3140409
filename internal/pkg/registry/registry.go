package registry

import (
	"fmt"
	"sort"
	"sync"

	"shop_checkout/internal/pkg/config"
	"shop_checkout/internal/pkg/worker"
	"shop_checkout/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ModuleContext 模块初始化所需的上下文
type ModuleContext struct {
	DB      *gorm.DB
	SQLX    *sqlx.DB      // 商品目录只读查询
	Redis   *redis.Client // 可为 nil，未配置时目录不走缓存
	Router  *gin.Engine
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *metrics.MetricsCollector
	Events  *worker.Pool // 订单事件异步分发
}

// Module 模块接口
type Module interface {
	// Name 返回模块名称
	Name() string

	// Init 初始化模块（依赖注入、路由注册等）
	Init(ctx *ModuleContext) error

	// Priority 返回初始化优先级（数字越小越先初始化）
	// order 模块需先于 payment 模块初始化，后者复用其账本服务
	Priority() int
}

var (
	mu             sync.Mutex
	moduleRegistry = make(map[string]Module)
)

// Register 注册模块，同名模块后注册者覆盖
func Register(module Module) {
	mu.Lock()
	defer mu.Unlock()
	moduleRegistry[module.Name()] = module
}

// GetModules 获取所有已注册的模块
func GetModules() map[string]Module {
	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]Module, len(moduleRegistry))
	for k, v := range moduleRegistry {
		out[k] = v
	}
	return out
}

// InitModules 按优先级初始化所有模块
func InitModules(ctx *ModuleContext) error {
	if ctx.Logger == nil {
		ctx.Logger = zap.NewNop()
	}
	mods := GetModules()
	modules := make([]Module, 0, len(mods))
	for _, m := range mods {
		modules = append(modules, m)
	}

	sort.SliceStable(modules, func(i, j int) bool {
		if modules[i].Priority() == modules[j].Priority() {
			return modules[i].Name() < modules[j].Name()
		}
		return modules[i].Priority() < modules[j].Priority()
	})

	for _, module := range modules {
		ctx.Logger.Info("init module", zap.String("module", module.Name()), zap.Int("priority", module.Priority()))
		if err := module.Init(ctx); err != nil {
			return fmt.Errorf("init module %s: %w", module.Name(), err)
		}
	}

	return nil
}

// shared 模块间共享的服务实例，按名称存取
var shared sync.Map

// Provide 发布一个供后续模块使用的实例
func Provide(name string, v any) {
	shared.Store(name, v)
}

// Lookup 取出先前模块发布的实例
func Lookup(name string) (any, bool) {
	return shared.Load(name)
}
