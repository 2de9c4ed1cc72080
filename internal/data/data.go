package data

import (
	"fmt"
	"strconv"

	"slotsim/internal/conf"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/wire"
	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	kredis "github.com/yola1107/kratos/v2/library/db/redis"
	kxorm "github.com/yola1107/kratos/v2/library/db/xorm"
	"github.com/yola1107/kratos/v2/library/mq/rabbitmq"
	"github.com/yola1107/kratos/v2/log"
	"xorm.io/xorm"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ProviderSet is data providers.
var ProviderSet = wire.NewSet(NewData, NewRedis, NewMysql, NewRabbitMQ, NewBookRepo, NewCalibrationRepo)

// Data .
type Data struct {
	db  *xorm.Engine
	rdb redis.UniversalClient
	pub *rabbitmq.Publisher
}

// NewData .
func NewData(c *conf.Data, logger log.Logger, db *xorm.Engine, rdb redis.UniversalClient, pub *rabbitmq.Publisher) (*Data, func(), error) {
	if err := db.Sync(new(bookRow)); err != nil {
		return nil, nil, fmt.Errorf("sync %s: %w", bookRow{}.TableName(), err)
	}
	cleanup := func() {
		log.NewHelper(logger).Info("closing the data resources")
		if err := rdb.Close(); err != nil {
			log.NewHelper(logger).Errorf("close redis: %v", err)
		}
	}
	return &Data{
		db:  db,
		rdb: rdb,
		pub: pub,
	}, cleanup, nil
}

func NewRedis(c *conf.Data, logger log.Logger) redis.UniversalClient {
	return kredis.NewClient(kredis.WithAddress(c.Redis.Addr))
}

func NewMysql(c *conf.Data, logger log.Logger) (*xorm.Engine, func(), error) {
	engine, err := kxorm.NewEngine(
		kxorm.WithDriver(c.Database.Driver),
		kxorm.WithDataSource(c.Database.Source),
	)
	if err != nil {
		return nil, nil, err
	}
	return engine, func() { engine.Close() }, nil
}

func NewRabbitMQ(c *conf.Data, logger log.Logger) (*rabbitmq.Publisher, func(), error) {
	opts, pubOpts := rabbitmqOptions(c.Rabbitmq)
	pub, err := rabbitmq.NewPublisher(opts, pubOpts)
	if err != nil {
		return nil, nil, fmt.Errorf("rabbitmq publisher %s:%s/%s: %w", opts.Host, opts.Port, pubOpts.Exchange, err)
	}
	return pub, pub.Close, nil
}

// rabbitmqOptions maps the config onto a publisher bound to a durable direct exchange.
func rabbitmqOptions(c *conf.Data_Rabbitmq) (rabbitmq.Options, rabbitmq.PublisherOptions) {
	opts := rabbitmq.Options{
		Host:     c.Host,
		Port:     strconv.Itoa(c.Port),
		Username: c.Username,
		Password: c.Password,
		VHost:    c.Vhost,
	}
	pubOpts := rabbitmq.PublisherOptions{
		Exchange:     c.Exchange,
		ExchangeType: "direct",
		RoutingKey:   c.RoutingKey,
	}
	return opts, pubOpts
}
