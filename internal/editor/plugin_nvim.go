package editor

// NvimPlugin is the neovim plugin source. Same protocol as the vim plugin,
// written against the libuv pipe API; a failed write drops the connection
// and the next signal reconnects.
const NvimPlugin = `-- codeclock neovim plugin: auto-generated, do not edit manually
-- Load from your init.lua:
--   dofile(vim.fn.expand('~/.config/codeclock/codeclock.lua'))

local uv = vim.loop

local data_home = os.getenv('XDG_DATA_HOME') or (os.getenv('HOME') .. '/.local/share')
local socket = data_home .. '/codeclock/tracker.sock'

local pipe = nil
local last_sent = {}

local function drop()
  if pipe and not pipe:is_closing() then
    pipe:close()
  end
  pipe = nil
end

local function ensure()
  if pipe then
    return true
  end
  local p = uv.new_pipe(false)
  p:connect(socket, function(err)
    if err then
      p:close()
      return
    end
    -- Acks are uninteresting; reading them keeps the socket buffer empty.
    p:read_start(function() end)
    pipe = p
  end)
  return false
end

local function send(kind, arg)
  local now = os.time()
  if last_sent[kind] == now then
    return
  end
  last_sent[kind] = now
  if not ensure() then
    return
  end
  pipe:write(kind .. '\t' .. (arg or '') .. '\n', function(err)
    if err then
      drop()
    end
  end)
end

local group = vim.api.nvim_create_augroup('codeclock', { clear = true })
local function on(events, cb)
  vim.api.nvim_create_autocmd(events, { group = group, callback = cb })
end

on({ 'TextChanged', 'TextChangedI', 'BufWritePost' }, function(args)
  send('edit', vim.api.nvim_buf_get_name(args.buf))
end)
on({ 'CursorMoved', 'CursorMovedI' }, function(args)
  send('cursor', vim.api.nvim_buf_get_name(args.buf))
end)
on('FocusGained', function()
  send('focus', 'gained')
end)
on('FocusLost', function()
  send('focus', 'lost')
end)
`
