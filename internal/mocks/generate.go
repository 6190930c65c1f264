package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/subscriber --output domain/subscriber --outpkg subscribermock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Provider --dir ../domain/scoreboard --output domain/scoreboard --outpkg scoreboardmock --filename provider_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Sink --dir ../domain/notification --output domain/notification --outpkg notificationmock --filename sink_mock.go
