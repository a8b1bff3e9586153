package editor

// VimPlugin is the vim plugin source. It opens a channel to the tracker
// socket and reports edits, cursor movement and focus changes, throttled to
// one signal per kind per second. Replies are read and discarded so the
// socket never backs up.
const VimPlugin = `" codeclock vim plugin: auto-generated, do not edit manually
" Source this file from your ~/.vimrc:
"   source ~/.config/codeclock/codeclock.vim

if exists('g:loaded_codeclock') || !has('channel') || !has('patch-8.1.0')
  finish
endif
let g:loaded_codeclock = 1

let s:data_home = empty($XDG_DATA_HOME) ? expand('~/.local/share') : $XDG_DATA_HOME
let s:socket = s:data_home . '/codeclock/tracker.sock'
let s:channel = v:null
let s:last_sent = {}

function! s:drain(channel, msg) abort
  " Acks are uninteresting; reading them keeps the socket buffer empty.
endfunction

function! s:connect() abort
  if s:channel isnot v:null && ch_status(s:channel) ==# 'open'
    return v:true
  endif
  silent! let s:channel = ch_open('unix:' . s:socket,
        \ {'mode': 'nl', 'callback': function('s:drain')})
  return s:channel isnot v:null && ch_status(s:channel) ==# 'open'
endfunction

function! s:send(kind, arg) abort
  let l:now = localtime()
  if get(s:last_sent, a:kind, -1) ==# l:now
    return
  endif
  let s:last_sent[a:kind] = l:now
  if !s:connect()
    return
  endif
  silent! call ch_sendraw(s:channel, a:kind . "\t" . a:arg . "\n")
endfunction

augroup codeclock
  autocmd!
  autocmd TextChanged,TextChangedI,BufWritePost * call s:send('edit', expand('%:p'))
  autocmd CursorMoved,CursorMovedI * call s:send('cursor', expand('%:p'))
  autocmd FocusGained * call s:send('focus', 'gained')
  autocmd FocusLost * call s:send('focus', 'lost')
augroup END
`
