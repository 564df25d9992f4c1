package redis

import "github.com/redis/go-redis/v9"

// Each script touches a single player hash, so Redis runs it atomically.
// Replies start with 1 when the hash exists and 0 when it does not.
// Counters change through HINCRBY and are returned as the stored string:
// Lua numbers are doubles and lose integer precision on large balances.

var ensureScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  return 0
end
redis.call('HSET', KEYS[1], unpack(ARGV))
return 1
`)

var adjustScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return {0, 0}
end
local v = redis.call('HINCRBY', KEYS[1], ARGV[1], ARGV[2])
if v < tonumber(ARGV[3]) then
  redis.call('HSET', KEYS[1], ARGV[1], ARGV[3])
end
if tonumber(redis.call('HGET', KEYS[1], 'vest')) <= 0 then
  redis.call('HSET', KEYS[1], 'is_vested', '0')
end
return {1, redis.call('HGET', KEYS[1], ARGV[1])}
`)

var consumeScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return {0, 0, 0}
end
local v = redis.call('HGET', KEYS[1], ARGV[1])
if tonumber(v) < tonumber(ARGV[2]) then
  return {1, 0, v}
end
redis.call('HINCRBY', KEYS[1], ARGV[1], '-' .. ARGV[2])
if tonumber(redis.call('HGET', KEYS[1], 'vest')) <= 0 then
  redis.call('HSET', KEYS[1], 'is_vested', '0')
end
return {1, 1, redis.call('HGET', KEYS[1], ARGV[1])}
`)

var setVestedScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return {0, 0}
end
local armed = '0'
if ARGV[1] == '1' and tonumber(redis.call('HGET', KEYS[1], 'vest')) > 0 then
  armed = '1'
end
redis.call('HSET', KEYS[1], 'is_vested', armed)
return {1, tonumber(armed)}
`)

var absorbScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return {0, 0, 0}
end
local vest = tonumber(redis.call('HGET', KEYS[1], 'vest'))
if redis.call('HGET', KEYS[1], 'is_vested') ~= '1' or vest <= 0 then
  return {1, 0, vest}
end
vest = vest - 1
redis.call('HSET', KEYS[1], 'vest', vest)
if vest > 0 then
  redis.call('HSET', KEYS[1], 'is_vested', '1')
else
  redis.call('HSET', KEYS[1], 'is_vested', '0')
end
return {1, 1, vest}
`)

var markScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return {0, 0}
end
if redis.call('HGET', KEYS[1], 'incapacitated') == '1' then
  return {1, 0}
end
redis.call('HSET', KEYS[1], 'incapacitated', '1', 'last_incapacitated_at', ARGV[1])
return {1, 1}
`)

var clearScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return {0, 0}
end
if redis.call('HGET', KEYS[1], 'incapacitated') ~= '1' then
  return {1, 0}
end
redis.call('HSET', KEYS[1], 'incapacitated', '0')
return {1, 1}
`)
